package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrVideoNotFound = errors.New("video not found")

// VideosService covers the routine catalog surface.
type VideosService interface {
	Create(ctx context.Context, req models.CreateVideoRequest) (*models.Video, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	List(ctx context.Context, current, pageSize int) ([]models.Video, utils.PaginationMeta, error)
}

type videosService struct {
	videoRepo repository.VideoRepository
}

func NewVideosService(videoRepo repository.VideoRepository) VideosService {
	return &videosService{videoRepo: videoRepo}
}

func (s *videosService) Create(ctx context.Context, req models.CreateVideoRequest) (*models.Video, error) {
	video := &models.Video{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
		Points:      req.Points,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return video, nil
}

func (s *videosService) Get(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	video, err := s.videoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to look up video: %w", err)
	}
	return video, nil
}

func (s *videosService) List(ctx context.Context, current, pageSize int) ([]models.Video, utils.PaginationMeta, error) {
	if current < 1 {
		current = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total, err := s.videoRepo.Count(ctx)
	if err != nil {
		return nil, utils.PaginationMeta{}, fmt.Errorf("failed to count videos: %w", err)
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	skip := int64(current-1) * int64(pageSize)
	videos, err := s.videoRepo.List(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, utils.PaginationMeta{}, fmt.Errorf("failed to list videos: %w", err)
	}

	return videos, utils.PaginationMeta{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
	}, nil
}
