package service

import (
	"context"
	"strings"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/Lixing-Zhang/broffee-bot/internal/repository"
)

// MenuService exposes the menu to the HTTP API
type MenuService struct {
	repo repository.MenuRepository
}

// NewMenuService creates a new menu service
func NewMenuService(repo repository.MenuRepository) *MenuService {
	return &MenuService{
		repo: repo,
	}
}

// ListItems returns all menu items in display order
func (s *MenuService) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.GetAll(ctx)
}

// GetItem returns a menu item by name, ignoring case
func (s *MenuService) GetItem(ctx context.Context, name string) (*models.MenuItem, error) {
	return s.repo.GetByName(ctx, strings.ToLower(strings.TrimSpace(name)))
}
