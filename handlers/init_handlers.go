package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"shoplens-backend/config"
	"shoplens-backend/database"
	"shoplens-backend/models"
	"shoplens-backend/utils"
)

// HandleInitializeAdmin bootstraps the first admin account. It refuses to run
// once any admin exists, so the endpoint can stay mounted after setup.
func HandleInitializeAdmin(c *fiber.Ctx) error {
	initToken := config.AppConfig.InitToken
	if initToken == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "INIT_TOKEN not configured",
		})
	}

	providedToken := c.Get("X-Init-Token")
	// Log masked token attempts for debugging (do not log full token)
	maskToken := func(t string) string {
		if len(t) <= 8 {
			return "****"
		}
		return t[:4] + "..." + t[len(t)-4:]
	}

	if providedToken != initToken {
		log.Printf("Init attempt with invalid token: %s", maskToken(providedToken))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid initialization token",
		})
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		log.Printf("Init request body parse error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Missing required fields (name, email, password)",
		})
	}

	db := database.GetDB()

	// Once an admin exists further admins come from the admin user API.
	var adminCount int
	if err := db.QueryRow(c.Context(),
		"SELECT COUNT(*) FROM users WHERE role = $1", utils.RoleAdmin).Scan(&adminCount); err != nil {
		log.Printf("Database error checking for existing admins: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Database error",
		})
	}
	if adminCount > 0 {
		log.Printf("Init aborted: platform already has %d admin(s)", adminCount)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  "error",
			"message": "Platform is already initialized",
		})
	}

	var emailTaken int
	if err := db.QueryRow(c.Context(),
		"SELECT COUNT(*) FROM users WHERE email = $1", req.Email).Scan(&emailTaken); err != nil {
		log.Printf("Database error checking email uniqueness: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Database error",
		})
	}
	if emailTaken > 0 {
		log.Printf("Init aborted: user with email %s already exists", req.Email)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  "error",
			"message": "User with this email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error processing password",
		})
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     utils.RoleAdmin,
		IsActive: true,
	}
	err = db.QueryRow(c.Context(),
		`INSERT INTO users (name, email, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, created_at, updated_at`,
		req.Name, req.Email, string(hashedPassword), utils.RoleAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		log.Printf("Error creating admin user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error creating admin user",
		})
	}

	log.Printf("Platform initialized: admin %s created", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Admin user created successfully",
		"data":    user,
	})
}
