package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMenuRepository_GetAllKeepsOrder(t *testing.T) {
	repo := NewDefaultMenuRepository()

	items, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 9)

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	assert.Equal(t, []string{
		"espresso", "americano", "cappucino", "frappe", "latte",
		"mocha", "tea", "croissant", "muffin",
	}, names)
}

func TestDefaultMenuRepository_GetAllReturnsCopy(t *testing.T) {
	repo := NewDefaultMenuRepository()

	items, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	items[0].Price = 99

	again, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, again[0].Price)
}

func TestDefaultMenuRepository_GetByName(t *testing.T) {
	repo := NewDefaultMenuRepository()

	item, err := repo.GetByName(context.Background(), "muffin")
	require.NoError(t, err)
	assert.Equal(t, 2.5, item.Price)

	_, err = repo.GetByName(context.Background(), "Muffin")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = repo.GetByName(context.Background(), "bagel")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestNewInMemoryMenuRepository_Validation(t *testing.T) {
	tests := []struct {
		name  string
		items []models.MenuItem
	}{
		{"empty", nil},
		{"blank name", []models.MenuItem{{Name: "  ", Price: 1}}},
		{"multi word name", []models.MenuItem{{Name: "flat white", Price: 4}}},
		{"zero price", []models.MenuItem{{Name: "water", Price: 0}}},
		{"duplicate after lowercasing", []models.MenuItem{{Name: "Tea", Price: 2}, {Name: "tea", Price: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInMemoryMenuRepository(tt.items)
			assert.ErrorIs(t, err, ErrInvalidMenu)
		})
	}
}

func TestLoadMenuFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	content := "- name: Flat\n  price: 4.5\n- name: chai\n  price: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	repo, err := LoadMenuFile(path)
	require.NoError(t, err)

	items, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.MenuItem{
		{Name: "flat", Price: 4.5},
		{Name: "chai", Price: 3},
	}, items)
}

func TestLoadMenuFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadMenuFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: [unterminated"), 0o644))
	_, err = LoadMenuFile(bad)
	assert.Error(t, err)
}
