package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"shoplens-backend/database"
	"shoplens-backend/middleware"
	"shoplens-backend/models"
)

// onboardingTotalSteps is the number of wizard steps: store profile, first
// product, first sale, dashboard tour.
const onboardingTotalSteps = 4

// HandleGetOnboardingProgress returns the merchant's wizard state, creating
// the initial row on first access.
func HandleGetOnboardingProgress(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	progress, err := loadOrCreateOnboarding(context.Background(), claims.UserID)
	if err != nil {
		log.Printf("Error loading onboarding progress for merchant %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to load onboarding progress"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": progress})
}

// HandleUpdateOnboardingStep marks a wizard step as completed. Steps complete
// in order; re-completing a finished step only merges the profile fields.
func HandleUpdateOnboardingStep(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	var req models.UpdateOnboardingStepRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.Step < 1 || req.Step > onboardingTotalSteps {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Step must be between 1 and %d", onboardingTotalSteps)})
	}

	ctx := context.Background()

	progress, err := loadOrCreateOnboarding(ctx, claims.UserID)
	if err != nil {
		log.Printf("Error loading onboarding progress for merchant %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to load onboarding progress"})
	}

	if progress.Completed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "Onboarding is already completed"})
	}
	if req.Step > progress.CurrentStep {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("Step %d must be completed first", progress.CurrentStep)})
	}

	if !containsStep(progress.CompletedSteps, req.Step) {
		progress.CompletedSteps = append(progress.CompletedSteps, req.Step)
	}
	if next := req.Step + 1; next > progress.CurrentStep && next <= onboardingTotalSteps {
		progress.CurrentStep = next
	}

	if len(req.BusinessProfile) > 0 {
		if progress.BusinessProfile == nil {
			progress.BusinessProfile = models.JSONB{}
		}
		for k, v := range req.BusinessProfile {
			progress.BusinessProfile[k] = v
		}
	}

	query := `
		UPDATE onboarding_progress
		SET current_step = $1, completed_steps = $2, business_profile = $3, updated_at = CURRENT_TIMESTAMP
		WHERE merchant_id = $4
		RETURNING updated_at`
	err = database.GetDB().QueryRow(ctx, query, progress.CurrentStep, progress.CompletedSteps, progress.BusinessProfile, claims.UserID).Scan(&progress.UpdatedAt)
	if err != nil {
		log.Printf("Error updating onboarding progress for merchant %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update onboarding progress"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": progress})
}

// HandleCompleteOnboarding marks the wizard as finished once every step is
// done. Calling it again is a no-op.
func HandleCompleteOnboarding(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
	}

	ctx := context.Background()

	progress, err := loadOrCreateOnboarding(ctx, claims.UserID)
	if err != nil {
		log.Printf("Error loading onboarding progress for merchant %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to load onboarding progress"})
	}

	if progress.Completed {
		return c.JSON(fiber.Map{"status": "success", "data": progress})
	}
	if len(progress.CompletedSteps) < onboardingTotalSteps {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": fmt.Sprintf("All %d steps must be completed first", onboardingTotalSteps)})
	}

	query := `
		UPDATE onboarding_progress
		SET completed = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE merchant_id = $1
		RETURNING updated_at`
	if err := database.GetDB().QueryRow(ctx, query, claims.UserID).Scan(&progress.UpdatedAt); err != nil {
		log.Printf("Error completing onboarding for merchant %s: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to complete onboarding"})
	}
	progress.Completed = true

	return c.JSON(fiber.Map{"status": "success", "data": progress})
}

// loadOrCreateOnboarding fetches the merchant's wizard row, inserting the
// step-one default when none exists yet.
func loadOrCreateOnboarding(ctx context.Context, merchantID string) (*models.OnboardingProgress, error) {
	db := database.GetDB()

	selectQuery := `
		SELECT merchant_id, current_step, completed_steps, COALESCE(business_profile, '{}'::jsonb), completed, updated_at
		FROM onboarding_progress
		WHERE merchant_id = $1`

	var progress models.OnboardingProgress
	err := db.QueryRow(ctx, selectQuery, merchantID).Scan(
		&progress.MerchantID, &progress.CurrentStep, &progress.CompletedSteps,
		&progress.BusinessProfile, &progress.Completed, &progress.UpdatedAt,
	)
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	insertQuery := `
		INSERT INTO onboarding_progress (merchant_id, current_step, completed_steps, business_profile, completed)
		VALUES ($1, 1, '{}', '{}'::jsonb, FALSE)
		ON CONFLICT (merchant_id) DO NOTHING`
	if _, err := db.Exec(ctx, insertQuery, merchantID); err != nil {
		return nil, err
	}

	err = db.QueryRow(ctx, selectQuery, merchantID).Scan(
		&progress.MerchantID, &progress.CurrentStep, &progress.CompletedSteps,
		&progress.BusinessProfile, &progress.Completed, &progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &progress, nil
}

func containsStep(steps []int, step int) bool {
	for _, s := range steps {
		if s == step {
			return true
		}
	}
	return false
}
