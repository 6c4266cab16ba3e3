package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/Lixing-Zhang/broffee-bot/internal/bot"
	"github.com/Lixing-Zhang/broffee-bot/internal/config"
	"github.com/Lixing-Zhang/broffee-bot/internal/repository"
	"github.com/Lixing-Zhang/broffee-bot/internal/service"
)

// cartStore is a CartStore the health check can ping
type cartStore interface {
	repository.CartStore
	Ping(ctx context.Context) error
}

// app wires the pieces shared by every transport
type app struct {
	menu       *repository.InMemoryMenuRepository
	carts      cartStore
	orders     *service.OrderService
	dispatcher *bot.Dispatcher
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	menu := repository.NewDefaultMenuRepository()
	if cfg.MenuFile != "" {
		var err error
		if menu, err = repository.LoadMenuFile(cfg.MenuFile); err != nil {
			return nil, err
		}
		log.Info("menu loaded from file", "path", cfg.MenuFile)
	}
	a.menu = menu

	switch cfg.Store.Backend {
	case config.StoreRedis:
		client, err := repository.NewRedisClient(ctx, &redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.carts = repository.NewRedisCartStore(client, cfg.Store.CartTTL)
		log.Info("using redis cart store", "addr", cfg.Store.RedisAddr, "ttl", cfg.Store.CartTTL.String())
	case config.StoreMemory:
		a.carts = repository.NewMemoryCartStoreWithTTL(cfg.Store.CartTTL)
		log.Info("using in-memory cart store", "ttl", cfg.Store.CartTTL.String())
	default:
		return nil, fmt.Errorf("unsupported cart store: %s", cfg.Store.Backend)
	}

	a.orders = service.NewOrderService(a.menu, a.carts, log)
	a.dispatcher = bot.NewDispatcher(a.orders, log)

	return a, nil
}

func (a *app) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
