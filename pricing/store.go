package pricing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shoplens-backend/models"
)

// PGHistoryStore loads product sales histories from PostgreSQL.
type PGHistoryStore struct {
	pool *pgxpool.Pool
}

// NewPGHistoryStore returns a store backed by pool.
func NewPGHistoryStore(pool *pgxpool.Pool) *PGHistoryStore {
	return &PGHistoryStore{pool: pool}
}

// Ping probes the connection pool.
func (s *PGHistoryStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ProductHistories loads every non-archived product, scoped to one merchant
// when merchantID is non-empty, with its sale records inside [from, to].
// A product whose rows cannot be read is logged and dropped; the batch never
// fails because of one bad product.
func (s *PGHistoryStore) ProductHistories(ctx context.Context, merchantID string, from, to time.Time) ([]models.ProductSalesHistory, int, error) {
	query := `SELECT id, name, price FROM products WHERE is_archived = FALSE`
	args := []interface{}{}
	if merchantID != "" {
		query += ` AND merchant_id = $1`
		args = append(args, merchantID)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	skipped := 0
	var products []models.ProductSalesHistory
	for rows.Next() {
		var h models.ProductSalesHistory
		if err := rows.Scan(&h.ProductID, &h.ProductName, &h.CurrentPrice); err != nil {
			log.Printf("Error scanning product row: %v", err)
			skipped++
			continue
		}
		products = append(products, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading product rows: %w", err)
	}

	histories := make([]models.ProductSalesHistory, 0, len(products))
	for _, h := range products {
		sales, err := s.saleRecords(ctx, h.ProductID, from, to)
		if err != nil {
			log.Printf("Error fetching sales for product %s: %v", h.ProductID, err)
			skipped++
			continue
		}
		h.Sales = sales
		histories = append(histories, h)
	}
	return histories, skipped, nil
}

// saleRecords loads the (price, quantity, date) triples for one product,
// oldest first.
func (s *PGHistoryStore) saleRecords(ctx context.Context, productID string, from, to time.Time) ([]models.SaleRecord, error) {
	query := `
		SELECT si.unit_price, si.quantity, s.sale_date
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE si.product_id = $1 AND s.sale_date >= $2 AND s.sale_date <= $3
		ORDER BY s.sale_date ASC`

	rows, err := s.pool.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SaleRecord
	for rows.Next() {
		var r models.SaleRecord
		if err := rows.Scan(&r.Price, &r.Quantity, &r.OccurredAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
