package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
	"shoplens-backend/utils"
)

// HandleListProducts lists the merchant's catalog, paginated, newest first.
// Supports ?search= (name or SKU), ?category= and ?includeArchived=true.
func HandleListProducts(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	db := database.GetDB()
	ctx := context.Background()

	filter := "WHERE merchant_id = $1"
	args := []interface{}{claims.UserID}

	if !c.QueryBool("includeArchived", false) {
		filter += " AND is_archived = FALSE"
	}
	if search := c.Query("search"); search != "" {
		args = append(args, "%"+search+"%")
		filter += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args))
	}
	if category := c.Query("category"); category != "" {
		args = append(args, category)
		filter += fmt.Sprintf(" AND category = $%d", len(args))
	}

	var totalItems int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM products "+filter, args...).Scan(&totalItems); err != nil {
		log.Printf("Error counting products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count products"})
	}

	query := fmt.Sprintf(`
		SELECT id, merchant_id, name, description, sku, category, price, cost_price,
		       stock_quantity, low_stock_threshold, is_archived, created_at, updated_at
		FROM products %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, filter, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error retrieving products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve products"})
	}
	defer rows.Close()

	items := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.SKU, &p.Category, &p.Price, &p.CostPrice,
			&p.StockQuantity, &p.LowStockThreshold, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan product data"})
		}
		items = append(items, p)
	}

	return c.JSON(fiber.Map{"status": "success", "data": models.PaginatedProductsResponse{
		Items:      items,
		Pagination: *utils.CreatePagination(totalItems, page, pageSize),
	}})
}

// HandleCreateProduct adds a product to the merchant's catalog.
func HandleCreateProduct(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Product name is required"})
	}
	if req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Price must be greater than zero"})
	}
	if req.StockQuantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Stock quantity cannot be negative"})
	}

	db := database.GetDB()
	ctx := context.Background()

	if req.SKU != nil && *req.SKU != "" {
		var skuTaken int
		if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE merchant_id = $1 AND sku = $2", claims.UserID, *req.SKU).Scan(&skuTaken); err != nil {
			log.Printf("Error checking SKU uniqueness: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create product"})
		}
		if skuTaken > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("A product with SKU %s already exists", *req.SKU)})
		}
	}

	query := `
		INSERT INTO products (merchant_id, name, description, sku, category, price, cost_price, stock_quantity, low_stock_threshold, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		RETURNING id, merchant_id, name, description, sku, category, price, cost_price,
		          stock_quantity, low_stock_threshold, is_archived, created_at, updated_at`

	var p models.Product
	err = db.QueryRow(ctx, query, claims.UserID, req.Name, req.Description, req.SKU, req.Category, req.Price, req.CostPrice, req.StockQuantity, req.LowStockThreshold).Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.SKU, &p.Category, &p.Price, &p.CostPrice,
		&p.StockQuantity, &p.LowStockThreshold, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create product"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": p})
}

// HandleGetProduct fetches a single product owned by the merchant.
func HandleGetProduct(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	productID := c.Params("productId")

	p, err := fetchProduct(context.Background(), productID, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error retrieving product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve product"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": p})
}

// HandleUpdateProduct applies a partial update to a product. Nil fields in the
// request body are left unchanged.
func HandleUpdateProduct(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	productID := c.Params("productId")

	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.Price != nil && *req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Price must be greater than zero"})
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Stock quantity cannot be negative"})
	}

	var setClauses []string
	var params []interface{}
	addSet := func(column string, value interface{}) {
		params = append(params, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(params)))
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.SKU != nil {
		addSet("sku", *req.SKU)
	}
	if req.Category != nil {
		addSet("category", *req.Category)
	}
	if req.Price != nil {
		addSet("price", *req.Price)
	}
	if req.CostPrice != nil {
		addSet("cost_price", *req.CostPrice)
	}
	if req.StockQuantity != nil {
		addSet("stock_quantity", *req.StockQuantity)
	}
	if req.LowStockThreshold != nil {
		addSet("low_stock_threshold", *req.LowStockThreshold)
	}
	if req.IsArchived != nil {
		addSet("is_archived", *req.IsArchived)
	}

	if len(setClauses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "No updatable fields provided"})
	}

	db := database.GetDB()
	ctx := context.Background()

	params = append(params, productID, claims.UserID)
	query := fmt.Sprintf(`UPDATE products SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d AND merchant_id = $%d`,
		strings.Join(setClauses, ", "), len(params)-1, len(params))

	tag, err := db.Exec(ctx, query, params...)
	if err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update product"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	p, err := fetchProduct(ctx, productID, claims.UserID)
	if err != nil {
		log.Printf("Error fetching updated product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch updated product"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": p})
}

// HandleArchiveProduct soft-deletes a product. Sale history references the
// product row, so rows are archived rather than removed.
func HandleArchiveProduct(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	productID := c.Params("productId")

	db := database.GetDB()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "UPDATE products SET is_archived = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND merchant_id = $2", productID, claims.UserID)
	if err != nil {
		log.Printf("Error archiving product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to archive product"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUpdateProductStock sets a product's stock level to an absolute value.
func HandleUpdateProductStock(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	productID := c.Params("productId")

	var req models.UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.StockQuantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Stock quantity cannot be negative"})
	}

	db := database.GetDB()
	ctx := context.Background()

	var newQuantity int
	err = db.QueryRow(ctx, `
		UPDATE products SET stock_quantity = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND merchant_id = $3
		RETURNING stock_quantity`, req.StockQuantity, productID, claims.UserID).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error updating stock for product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update stock"})
	}

	log.Printf("Stock for product %s set to %d, reason: %s", productID, newQuantity, utils.PointerToString(req.Reason))

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"id": productID, "stock_quantity": newQuantity}})
}

// fetchProduct loads a product scoped to its owning merchant.
func fetchProduct(ctx context.Context, productID, merchantID string) (*models.Product, error) {
	query := `
		SELECT id, merchant_id, name, description, sku, category, price, cost_price,
		       stock_quantity, low_stock_threshold, is_archived, created_at, updated_at
		FROM products
		WHERE id = $1 AND merchant_id = $2`

	var p models.Product
	err := database.GetDB().QueryRow(ctx, query, productID, merchantID).Scan(
		&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.SKU, &p.Category, &p.Price, &p.CostPrice,
		&p.StockQuantity, &p.LowStockThreshold, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
