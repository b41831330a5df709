package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vutran-dev/platform-ads/internal/middlewares"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	svc services.UsersService
}

func NewUserHandler(svc services.UsersService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errs)
	}

	user, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	current := c.QueryInt("current", 1)
	pageSize := c.QueryInt("pageSize", 10)

	users, meta, err := h.svc.List(c.Context(), current, pageSize)
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Users retrieved successfully", users, meta)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user, ok := middlewares.UserFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Profile retrieved successfully", user)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user ID")
	}
	user, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errs)
	}

	user, err := h.svc.Update(c.Context(), req)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user ID")
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "User deleted successfully", nil)
}
