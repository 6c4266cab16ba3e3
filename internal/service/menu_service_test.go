package service

import (
	"context"
	"testing"

	"github.com/Lixing-Zhang/broffee-bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuService_GetItemIgnoresCase(t *testing.T) {
	svc := NewMenuService(repository.NewDefaultMenuRepository())

	item, err := svc.GetItem(context.Background(), " Croissant ")
	require.NoError(t, err)
	assert.Equal(t, "croissant", item.Name)
	assert.Equal(t, 3.0, item.Price)

	_, err = svc.GetItem(context.Background(), "bagel")
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
}

func TestMenuService_ListItems(t *testing.T) {
	svc := NewMenuService(repository.NewDefaultMenuRepository())

	items, err := svc.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 9)
	assert.Equal(t, "espresso", items[0].Name)
	assert.Equal(t, "muffin", items[8].Name)
}
