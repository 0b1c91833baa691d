package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"trail-profile-service/internal/models"
	"trail-profile-service/internal/repository"
	"trail-profile-service/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Health returns service health status.
func (h *ProfileHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "profile-service",
	})
}

// CreateUser creates a new user profile.
func (h *ProfileHandler) CreateUser(c fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid request body"})
	}

	if err := h.svc.CreateUser(req); err != nil {
		slog.Error("failed to create user", "username", req.Username, "error", err)
		return respondError(c, err)
	}

	slog.Info("user created", "username", req.Username)
	return c.JSON(models.SuccessResponse{Message: "User created successfully"})
}

// GetUser returns a user profile by ID.
func (h *ProfileHandler) GetUser(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid user ID"})
	}

	row, err := h.svc.ReadUser(id)
	if err != nil {
		slog.Error("failed to read user", "user_id", id, "error", err)
		return respondError(c, err)
	}

	return c.JSON(row)
}

// UpdateUser updates a user profile. All fields are optional.
func (h *ProfileHandler) UpdateUser(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid user ID"})
	}

	var req models.UpdateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid request body"})
	}

	if err := h.svc.UpdateUser(id, req); err != nil {
		slog.Error("failed to update user", "user_id", id, "error", err)
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{Message: "User updated successfully"})
}

// DeleteUser deletes a user profile.
func (h *ProfileHandler) DeleteUser(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid user ID"})
	}

	if err := h.svc.DeleteUser(id); err != nil {
		slog.Error("failed to delete user", "user_id", id, "error", err)
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{Message: "User deleted successfully"})
}

// AddActivity adds a favourite activity to a user's preferences.
func (h *ProfileHandler) AddActivity(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid user ID"})
	}

	var req models.ActivityRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid request body"})
	}

	if err := h.svc.AddActivity(id, req); err != nil {
		slog.Error("failed to add activity", "user_id", id, "activity_id", req.ActivityID, "error", err)
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{Message: "User Preferences created successfully"})
}

// UpdatePreferences replaces one of a user's activity preferences.
func (h *ProfileHandler) UpdatePreferences(c fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid user ID"})
	}

	var req models.UpdatePreferencesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: "Invalid request body"})
	}

	if err := h.svc.UpdatePreference(id, req); err != nil {
		slog.Error("failed to update preferences", "user_id", id, "error", err)
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse{Message: "User Preferences updated successfully"})
}

// respondError maps service-layer failures to responses. Only fixed,
// classified messages go to the caller; raw backend text stays in the logs.
func respondError(c fiber.Ctx, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Detail: ve.Detail})
	}

	var de *service.DomainError
	if errors.As(err, &de) {
		return c.Status(de.Status).JSON(models.ErrorResponse{Detail: de.Detail})
	}

	if errors.Is(err, repository.ErrStoreUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Detail: "Database connection failed"})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Detail: "Internal server error"})
}
