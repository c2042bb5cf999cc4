package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"shoplens-backend/database"
	"shoplens-backend/models"
	"shoplens-backend/utils"
)

// HandleGetAdminDashboardSummary fetches platform-wide counts for the admin dashboard.
func HandleGetAdminDashboardSummary(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()
	var summary models.AdminDashboardSummary

	jsonError := func(message string) error {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": message})
	}

	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE role = 'merchant' AND is_active = TRUE").Scan(&summary.TotalActiveMerchants); err != nil {
		log.Printf("Error counting active merchants: %v", err)
		return jsonError("Failed to get active merchants")
	}

	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE is_archived = FALSE").Scan(&summary.TotalProductsListed); err != nil {
		log.Printf("Error counting listed products: %v", err)
		return jsonError("Failed to get listed products")
	}

	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM sales").Scan(&summary.TotalSalesRecorded); err != nil {
		log.Printf("Error counting sales: %v", err)
		return jsonError("Failed to get recorded sales")
	}

	return c.JSON(fiber.Map{"status": "success", "data": summary})
}

// HandleCreateUser creates a merchant or admin account.
func HandleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Name, email, password and role are required"})
	}

	role, ok := utils.ValidateAndNormalizeRole(req.Role)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Invalid role: %s", req.Role)})
	}

	db := database.GetDB()
	ctx := context.Background()

	var emailTaken int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", req.Email).Scan(&emailTaken); err != nil {
		log.Printf("Error checking email uniqueness: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create user"})
	}
	if emailTaken > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "A user with this email already exists"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not process password"})
	}

	query := `
		INSERT INTO users (name, email, password_hash, role, is_active, store_name)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING id, name, email, role, is_active, store_name, created_at, updated_at`

	var user models.User
	var storeName sql.NullString
	err = db.QueryRow(ctx, query, req.Name, req.Email, string(hashedPassword), role, req.StoreName).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive, &storeName, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error inserting user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create user"})
	}
	user.StoreName = utils.NullStringToStringPtr(storeName)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": user})
}

// HandleGetUsers lists user accounts, paginated, optionally filtered by role.
func HandleGetUsers(c *fiber.Ctx) error {
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

	filter := ""
	args := []interface{}{}
	if role := c.Query("role"); role != "" {
		normalized, ok := utils.ValidateAndNormalizeRole(role)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Invalid role: %s", role)})
		}
		filter = " WHERE role = $1"
		args = append(args, normalized)
	}

	var totalItems int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM users"+filter, args...).Scan(&totalItems); err != nil {
		log.Printf("Error counting users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count users"})
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, role, is_active, store_name, created_at, updated_at
		FROM users%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`, filter, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Error retrieving users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve users"})
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		var storeName sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive, &storeName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			log.Printf("Error scanning user row: %v", err)
			continue
		}
		user.StoreName = utils.NullStringToStringPtr(storeName)
		users = append(users, user)
	}

	return c.JSON(fiber.Map{"status": "success", "data": models.PaginatedUsersResponse{
		Data:       users,
		Pagination: *utils.CreatePagination(totalItems, page, pageSize),
	}})
}

// HandleGetMerchantsForSelection returns a lightweight merchant list for admin dropdowns.
func HandleGetMerchantsForSelection(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	rows, err := db.Query(ctx, "SELECT id, name FROM users WHERE role = 'merchant' AND is_active = TRUE ORDER BY name ASC")
	if err != nil {
		log.Printf("Error retrieving merchant selection list: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve merchants"})
	}
	defer rows.Close()

	merchants := make([]models.UserSelectionItem, 0)
	for rows.Next() {
		var item models.UserSelectionItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			log.Printf("Error scanning merchant row: %v", err)
			continue
		}
		merchants = append(merchants, item)
	}

	return c.JSON(fiber.Map{"status": "success", "data": merchants})
}

// HandleAdminUpdateUser applies a partial update to a user account.
func HandleAdminUpdateUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	query, params := buildUserUpdateQuery(userID, updates)
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "No updatable fields provided"})
	}

	db := database.GetDB()
	ctx := context.Background()

	tag, err := db.Exec(ctx, query, params...)
	if err != nil {
		log.Printf("Error updating user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update user"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "User not found"})
	}

	updatedUser, err := fetchUser(ctx, userID)
	if err != nil {
		log.Printf("Error fetching updated user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch updated user"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": updatedUser})
}

// buildUserUpdateQuery constructs a dynamic SQL UPDATE from the allowlisted fields.
func buildUserUpdateQuery(userID string, updates map[string]interface{}) (string, []interface{}) {
	var setClauses []string
	var params []interface{}
	i := 1

	for key, value := range updates {
		if !isUpdatableUserField(key) {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, i))
		params = append(params, value)
		i++
	}
	if len(setClauses) == 0 {
		return "", nil
	}

	params = append(params, userID)
	query := fmt.Sprintf("UPDATE users SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d", strings.Join(setClauses, ", "), i)

	return query, params
}

// isUpdatableUserField is a simple allowlist of updatable fields.
func isUpdatableUserField(field string) bool {
	switch field {
	case "name", "email", "is_active", "store_name":
		return true
	default:
		return false
	}
}

// fetchUser fetches the full user details after an update.
func fetchUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	var storeName sql.NullString

	query := `SELECT id, name, email, role, is_active, store_name, created_at, updated_at FROM users WHERE id = $1`
	err := database.GetDB().QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.IsActive, &storeName, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.StoreName = utils.NullStringToStringPtr(storeName)

	return &user, nil
}
