package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/utils"
)

// SyncRequest is a batch of sales recorded offline by a POS client.
type SyncRequest struct {
	BatchID  string            `json:"batchId"`
	DeviceID string            `json:"deviceId"`
	Sales    []OfflineSaleData `json:"sales"`
}

// OfflineSaleData is a single offline sale. ID is the client's local
// identifier, used to make re-syncing the same batch idempotent.
type OfflineSaleData struct {
	ID          string            `json:"id"`
	SaleDate    time.Time         `json:"saleDate"`
	PaymentType string            `json:"paymentType"`
	Notes       *string           `json:"notes"`
	Items       []OfflineSaleItem `json:"items"`
}

// OfflineSaleItem is an item in an offline sale.
type OfflineSaleItem struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice"`
}

// SyncResult reports what happened to one offline sale.
type SyncResult struct {
	LocalID  string  `json:"localId"`
	ServerID *string `json:"serverId"`
	Status   string  `json:"status"` // "synced" or "failed"
	Error    *string `json:"error"`
}

// BatchSyncResponse summarizes a batch sync.
type BatchSyncResponse struct {
	Status      string       `json:"status"` // "success", "partial", "failed"
	SyncBatchID string       `json:"syncBatchId"`
	Results     []SyncResult `json:"results"`
	SyncedCount int          `json:"syncedCount"`
	FailedCount int          `json:"failedCount"`
}

// HandleSyncOfflineSales ingests a batch of offline sales. Each sale is
// processed in its own transaction so one bad sale cannot poison the rest of
// the batch, and re-submitting a batch is idempotent per sale.
func HandleSyncOfflineSales(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}
	merchantID := claims.UserID

	var syncReq SyncRequest
	if err := c.BodyParser(&syncReq); err != nil {
		log.Printf("❌ [SYNC] Error parsing sync request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid sync request format"})
	}

	if len(syncReq.Sales) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "No sales to sync"})
	}
	if syncReq.BatchID == "" {
		syncReq.BatchID = uuid.New().String()
	}

	log.Printf("🔄 [SYNC] Batch %s started: %d sale(s), merchant %s, device %s",
		syncReq.BatchID, len(syncReq.Sales), merchantID, syncReq.DeviceID)

	ctx := context.Background()

	results := make([]SyncResult, 0, len(syncReq.Sales))
	successCount := 0
	failureCount := 0

	for _, offlineSale := range syncReq.Sales {
		result := processSaleSync(ctx, merchantID, offlineSale)
		results = append(results, result)

		if result.Status == "synced" {
			successCount++
		} else {
			failureCount++
			errorMsg := ""
			if result.Error != nil {
				errorMsg = *result.Error
			}
			log.Printf("❌ [SYNC] Sale %s failed: %s", offlineSale.ID, errorMsg)
		}
	}

	response := BatchSyncResponse{
		Status:      "success",
		SyncBatchID: syncReq.BatchID,
		Results:     results,
		SyncedCount: successCount,
		FailedCount: failureCount,
	}
	if failureCount > 0 && successCount == 0 {
		response.Status = "failed"
	} else if failureCount > 0 {
		response.Status = "partial"
	}

	log.Printf("✅ [SYNC] Batch %s completed: %d synced, %d failed", syncReq.BatchID, successCount, failureCount)

	return c.JSON(fiber.Map{"status": "success", "data": response})
}

// processSaleSync replays a single offline sale through the regular sale
// flow. The client's local id is kept in the notes column so a duplicate
// submission finds the already-synced row.
func processSaleSync(ctx context.Context, merchantID string, offlineSale OfflineSaleData) SyncResult {
	result := SyncResult{
		LocalID: offlineSale.ID,
		Status:  "failed",
	}

	fail := func(format string, args ...interface{}) SyncResult {
		msg := fmt.Sprintf(format, args...)
		result.Error = &msg
		return result
	}

	if offlineSale.ID == "" {
		return fail("offline sale is missing its local id")
	}
	if len(offlineSale.Items) == 0 {
		return fail("offline sale %s has no items", offlineSale.ID)
	}

	db := database.GetDB()

	// Duplicate check happens outside the transaction: a replayed batch is
	// the common case, not the error case.
	localIDTag := fmt.Sprintf("offline_local_id:%s", offlineSale.ID)
	var existingSaleID string
	err := db.QueryRow(ctx, "SELECT id FROM sales WHERE merchant_id = $1 AND notes LIKE $2", merchantID, localIDTag+"%").Scan(&existingSaleID)
	if err == nil {
		result.Status = "synced"
		result.ServerID = &existingSaleID
		return result
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fail("duplicate check failed: %v", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fail("could not start transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	paymentType := offlineSale.PaymentType
	if paymentType == "" {
		paymentType = "cash"
	}
	saleDate := offlineSale.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	type resolvedItem struct {
		productID string
		quantity  int
		unitPrice float64
		subtotal  float64
	}

	total := decimal.Zero
	resolved := make([]resolvedItem, 0, len(offlineSale.Items))
	for _, item := range offlineSale.Items {
		if item.Quantity < 1 {
			return fail("item %s has an invalid quantity", item.ProductID)
		}

		var currentPrice float64
		err := tx.QueryRow(ctx, "SELECT price FROM products WHERE id = $1 AND merchant_id = $2", item.ProductID, merchantID).Scan(&currentPrice)
		if err != nil {
			return fail("product not found: %s", item.ProductID)
		}

		unitPrice := currentPrice
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}

		subtotal := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedItem{
			productID: item.ProductID,
			quantity:  item.Quantity,
			unitPrice: unitPrice,
			subtotal:  subtotal.InexactFloat64(),
		})
	}

	saleNumber, err := utils.GenerateSaleNumber(ctx, tx, merchantID)
	if err != nil {
		return fail("could not generate sale number: %v", err)
	}

	notes := localIDTag
	if offlineSale.Notes != nil && *offlineSale.Notes != "" {
		notes = fmt.Sprintf("%s | %s", localIDTag, *offlineSale.Notes)
	}

	var serverID string
	saleQuery := `
		INSERT INTO sales (merchant_id, sale_number, sale_date, total_amount, payment_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := tx.QueryRow(ctx, saleQuery, merchantID, saleNumber, saleDate, total.InexactFloat64(), paymentType, notes).Scan(&serverID); err != nil {
		return fail("could not create sale: %v", err)
	}

	for _, item := range resolved {
		itemQuery := `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, itemQuery, serverID, item.productID, item.quantity, item.unitPrice, item.subtotal); err != nil {
			return fail("could not create sale item: %v", err)
		}

		// Offline sales already happened: stock goes negative rather than
		// rejecting the sync.
		stockQuery := `UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
		if _, err := tx.Exec(ctx, stockQuery, item.quantity, item.productID); err != nil {
			return fail("could not update stock: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fail("could not commit sale: %v", err)
	}

	result.Status = "synced"
	result.ServerID = &serverID
	return result
}
