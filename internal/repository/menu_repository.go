package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrItemNotFound = errors.New("menu item not found")
	ErrInvalidMenu  = errors.New("invalid menu")
)

// MenuRepository defines the interface for menu data access
type MenuRepository interface {
	GetAll(ctx context.Context) ([]models.MenuItem, error)
	GetByName(ctx context.Context, name string) (*models.MenuItem, error)
}

// InMemoryMenuRepository implements MenuRepository with an immutable in-memory menu.
// Items keep their definition order.
type InMemoryMenuRepository struct {
	items []models.MenuItem
	index map[string]int
}

// DefaultMenu returns the shop's standard menu in display order
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "espresso", Price: 2.0},
		{Name: "americano", Price: 5.0},
		{Name: "cappucino", Price: 6.0},
		{Name: "frappe", Price: 7.0},
		{Name: "latte", Price: 6.0},
		{Name: "mocha", Price: 7.0},
		{Name: "tea", Price: 2.0},
		{Name: "croissant", Price: 3.0},
		{Name: "muffin", Price: 2.5},
	}
}

// NewDefaultMenuRepository creates a menu repository seeded with DefaultMenu
func NewDefaultMenuRepository() *InMemoryMenuRepository {
	repo, err := NewInMemoryMenuRepository(DefaultMenu())
	if err != nil {
		panic(err) // default menu is static
	}
	return repo
}

// NewInMemoryMenuRepository creates a repository from the given items.
// Names are lowercased and must be unique; prices must be positive.
func NewInMemoryMenuRepository(items []models.MenuItem) (*InMemoryMenuRepository, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidMenu)
	}

	repo := &InMemoryMenuRepository{
		items: make([]models.MenuItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}

	for i, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidMenu, i+1)
		}
		if strings.ContainsAny(name, " \t\n") {
			return nil, fmt.Errorf("%w: item name %q must be a single word", ErrInvalidMenu, name)
		}
		if item.Price <= 0 {
			return nil, fmt.Errorf("%w: item %q must have a positive price", ErrInvalidMenu, name)
		}
		if _, exists := repo.index[name]; exists {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidMenu, name)
		}

		repo.index[name] = len(repo.items)
		repo.items = append(repo.items, models.MenuItem{Name: name, Price: item.Price})
	}

	return repo, nil
}

// LoadMenuFile reads a YAML list of {name, price} entries and builds a repository
func LoadMenuFile(path string) (*InMemoryMenuRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	var items []models.MenuItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse menu file %s: %w", path, err)
	}

	return NewInMemoryMenuRepository(items)
}

// GetAll returns a copy of all menu items in definition order
func (r *InMemoryMenuRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, len(r.items))
	copy(items, r.items)
	return items, nil
}

// GetByName returns a menu item by its lowercase name
func (r *InMemoryMenuRepository) GetByName(ctx context.Context, name string) (*models.MenuItem, error) {
	i, exists := r.index[name]
	if !exists {
		return nil, ErrItemNotFound
	}
	item := r.items[i]
	return &item, nil
}
