package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// PaginationMeta carries paging information for list responses.
type PaginationMeta struct {
	CurrentPage     int   `json:"currentPage"`
	PageSize        int   `json:"pageSize"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// APIResponse is the success envelope returned by every endpoint.
type APIResponse struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       interface{}     `json:"data"`
	Meta       *PaginationMeta `json:"meta,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

// APIErrorResponse is the error envelope produced by the error handler.
type APIErrorResponse struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Error      string            `json:"error,omitempty"`
	Errors     []ValidationError `json:"errors,omitempty"`
	Timestamp  string            `json:"timestamp"`
	Path       string            `json:"path,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(APIResponse{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func PaginatedResponse(c *fiber.Ctx, message string, data interface{}, meta PaginationMeta) error {
	meta.HasNextPage = meta.CurrentPage < meta.TotalPages
	meta.HasPreviousPage = meta.CurrentPage > 1
	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success:    true,
		StatusCode: fiber.StatusOK,
		Message:    message,
		Data:       data,
		Meta:       &meta,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func ErrorResponse(c *fiber.Ctx, status int, message string, errs []ValidationError) error {
	return c.Status(status).JSON(APIErrorResponse{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     errs,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Path(),
	})
}
