package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GenerateSaleNumber generates a unique sale number in the format
// SAL-YYYY-NNNN where YYYY is the current year and NNNN is a sequential
// number scoped to the merchant.
func GenerateSaleNumber(ctx context.Context, db interface{}, merchantID string) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SAL-%d-", year)

	// Query to find the latest sale number for this merchant and year
	query := `
		SELECT sale_number
		FROM sales
		WHERE merchant_id = $1 AND sale_number LIKE $2
		ORDER BY sale_number DESC
		LIMIT 1
	`
	pattern := fmt.Sprintf("SAL-%d-%%", year)

	var lastSaleNumber string
	var err error

	// Handle both pgxpool.Pool and pgx.Tx types
	switch v := db.(type) {
	case *pgxpool.Pool:
		err = v.QueryRow(ctx, query, merchantID, pattern).Scan(&lastSaleNumber)
	case pgx.Tx:
		err = v.QueryRow(ctx, query, merchantID, pattern).Scan(&lastSaleNumber)
	default:
		return "", fmt.Errorf("unsupported database type")
	}

	// If no sale exists for this year, start at 0001
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Sprintf("%s%04d", prefix, 1), nil
		}
		return "", fmt.Errorf("failed to query last sale number: %w", err)
	}

	// Extract the sequential number from the last sale
	var lastSeq int
	_, err = fmt.Sscanf(lastSaleNumber, prefix+"%d", &lastSeq)
	if err != nil {
		// If parsing fails, start fresh
		return fmt.Sprintf("%s%04d", prefix, 1), nil
	}

	// Increment and return
	newSeq := lastSeq + 1
	return fmt.Sprintf("%s%04d", prefix, newSeq), nil
}
