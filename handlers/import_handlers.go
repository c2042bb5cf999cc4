package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
	"shoplens-backend/utils"
)

// importedProduct is one validated CSV row ready for insertion.
type importedProduct struct {
	Name              string
	Description       *string
	SKU               *string
	Category          *string
	Price             decimal.Decimal
	CostPrice         *decimal.Decimal
	StockQuantity     int
	LowStockThreshold *int
}

// HandleImportProducts ingests a CSV catalog upload. Rows are validated
// individually; invalid rows are reported with their line number while the
// rest import. Valid rows are inserted in a single transaction.
//
// Expected header: name, price and optionally description, sku, category,
// cost_price, stock_quantity, low_stock_threshold. Column order is free,
// unknown columns are ignored.
func HandleImportProducts(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "A CSV file is required in the 'file' field"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded file %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not read uploaded file"})
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "CSV file is empty or unreadable"})
	}

	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "CSV is missing the required 'name' column"})
	}
	if _, ok := columns["price"]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "CSV is missing the required 'price' column"})
	}

	db := database.GetDB()
	ctx := context.Background()

	existingSKUs, err := merchantSKUs(ctx, claims.UserID)
	if err != nil {
		log.Printf("Error loading existing SKUs for merchant %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to prepare import"})
	}

	report := models.ImportReport{
		BatchID: uuid.New().String(),
		Errors:  []models.ImportRowError{},
	}
	valid := make([]importedProduct, 0)
	seenSKUs := make(map[string]int)

	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, models.ImportRowError{Line: line, Message: "malformed CSV row"})
			continue
		}

		row, rowErr := parseProductRow(record, columns)
		if rowErr != "" {
			report.Skipped++
			report.Errors = append(report.Errors, models.ImportRowError{Line: line, Message: rowErr})
			continue
		}

		if row.SKU != nil {
			if _, exists := existingSKUs[*row.SKU]; exists {
				report.Skipped++
				report.Errors = append(report.Errors, models.ImportRowError{Line: line, Message: fmt.Sprintf("SKU %s already exists", *row.SKU)})
				continue
			}
			if firstLine, dup := seenSKUs[*row.SKU]; dup {
				report.Skipped++
				report.Errors = append(report.Errors, models.ImportRowError{Line: line, Message: fmt.Sprintf("duplicate SKU %s (first used on line %d)", *row.SKU, firstLine)})
				continue
			}
			seenSKUs[*row.SKU] = line
		}

		valid = append(valid, row)
	}

	if len(valid) == 0 && len(report.Errors) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "CSV file contains no data rows"})
	}

	if len(valid) > 0 {
		tx, err := db.Begin(ctx)
		if err != nil {
			log.Printf("Error starting import transaction: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start import"})
		}
		defer tx.Rollback(ctx)

		insertQuery := `
			INSERT INTO products (merchant_id, name, description, sku, category, price, cost_price, stock_quantity, low_stock_threshold, is_archived)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)`

		for _, row := range valid {
			var costPrice interface{}
			if row.CostPrice != nil {
				costPrice = row.CostPrice.InexactFloat64()
			}
			_, err := tx.Exec(ctx, insertQuery,
				claims.UserID, row.Name, row.Description, row.SKU, row.Category,
				row.Price.InexactFloat64(), costPrice, row.StockQuantity, row.LowStockThreshold,
			)
			if err != nil {
				log.Printf("Error inserting imported product %q: %v", row.Name, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to import products"})
			}
		}

		if err := tx.Commit(ctx); err != nil {
			log.Printf("Error committing import transaction: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to import products"})
		}
	}

	report.Imported = len(valid)
	log.Printf("Product import %s for merchant %s: %d imported, %d skipped", report.BatchID, claims.UserID, report.Imported, report.Skipped)

	return c.JSON(fiber.Map{"status": "success", "data": report})
}

// parseProductRow validates one CSV record. It returns the parsed row or a
// human-readable rejection message.
func parseProductRow(record []string, columns map[string]int) (importedProduct, string) {
	col := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var row importedProduct

	row.Name = col("name")
	if row.Name == "" {
		return row, "name is required"
	}

	priceStr := col("price")
	if priceStr == "" {
		return row, "price is required"
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return row, fmt.Sprintf("invalid price %q", priceStr)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return row, "price must be greater than zero"
	}
	row.Price = price

	if costStr := col("cost_price"); costStr != "" {
		cost, err := decimal.NewFromString(costStr)
		if err != nil {
			return row, fmt.Sprintf("invalid cost_price %q", costStr)
		}
		if cost.IsNegative() {
			return row, "cost_price cannot be negative"
		}
		row.CostPrice = &cost
	}

	if stockStr := col("stock_quantity"); stockStr != "" {
		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			return row, fmt.Sprintf("invalid stock_quantity %q", stockStr)
		}
		row.StockQuantity = stock
	}

	if thresholdStr := col("low_stock_threshold"); thresholdStr != "" {
		threshold, err := strconv.Atoi(thresholdStr)
		if err != nil || threshold < 0 {
			return row, fmt.Sprintf("invalid low_stock_threshold %q", thresholdStr)
		}
		row.LowStockThreshold = &threshold
	}

	row.Description = utils.EmptyToNil(col("description"))
	row.SKU = utils.EmptyToNil(col("sku"))
	row.Category = utils.EmptyToNil(col("category"))

	return row, ""
}

// merchantSKUs returns the set of SKUs already in the merchant's catalog.
func merchantSKUs(ctx context.Context, merchantID string) (map[string]struct{}, error) {
	rows, err := database.GetDB().Query(ctx, "SELECT sku FROM products WHERE merchant_id = $1 AND sku IS NOT NULL", merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skus := make(map[string]struct{})
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, err
		}
		skus[sku] = struct{}{}
	}

	return skus, rows.Err()
}
