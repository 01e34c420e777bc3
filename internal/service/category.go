package service

import (
	"context"
	"strings"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
	"github.com/BuzzLyutic/taskflow-api/internal/repo"
)

// Категории не рассылаются по вебсокету - осознанное ограничение,
// живая синхронизация есть только у задач
type CategoryService struct {
	repo repo.CategoryRepository
}

func NewCategoryService(repo repo.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) Create(ctx context.Context, userID string, c model.Category) (model.Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return c, ErrValidation
	}
	c.UserID = userID
	return s.repo.Create(ctx, c)
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]model.Category, error) {
	return s.repo.List(ctx, userID)
}
