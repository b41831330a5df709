package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VideoHandler struct {
	svc services.VideosService
}

func NewVideoHandler(svc services.VideosService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

func (h *VideoHandler) Create(c *fiber.Ctx) error {
	var req models.CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errs)
	}

	video, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Video created successfully", video)
}

func (h *VideoHandler) List(c *fiber.Ctx) error {
	current := c.QueryInt("current", 1)
	pageSize := c.QueryInt("pageSize", 10)

	videos, meta, err := h.svc.List(c.Context(), current, pageSize)
	if err != nil {
		return err
	}
	return utils.PaginatedResponse(c, "Videos retrieved successfully", videos, meta)
}

func (h *VideoHandler) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid video ID")
	}
	video, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Video retrieved successfully", video)
}
