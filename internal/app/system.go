// Package app wires the four registries into one system.
package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"myfood/internal/config"
	"myfood/internal/repository"
	"myfood/internal/service"
)

// Snapshot file names under the storage directory.
const (
	UsersFile      = "users.yaml"
	BusinessesFile = "businesses.yaml"
	ProductsFile   = "products.yaml"
	OrdersFile     = "orders.yaml"
)

type System struct {
	Users      *service.UserService
	Businesses *service.BusinessService
	Products   *service.ProductService
	Orders     *service.OrderService

	log *slog.Logger
}

// New loads every registry from cfg.Storage.Dir. An empty dir keeps the
// system in memory only.
func New(cfg config.StorageConfig, log *slog.Logger) *System {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	path := func(name string) string {
		if cfg.Dir == "" {
			return ""
		}
		return filepath.Join(cfg.Dir, name)
	}

	users := service.NewUserService(repository.NewUserStore(path(UsersFile), log))
	businesses := service.NewBusinessService(repository.NewBusinessStore(path(BusinessesFile), log), users)
	products := service.NewProductService(repository.NewProductStore(path(ProductsFile), log), businesses)
	orders := service.NewOrderService(repository.NewOrderStore(path(OrdersFile), log), users, businesses, products)

	log.Info("system.ready", "storage_dir", cfg.Dir)
	return &System{Users: users, Businesses: businesses, Products: products, Orders: orders, log: log}
}

// Reset empties every registry and removes its snapshot.
func (s *System) Reset(ctx context.Context) {
	s.Orders.Reset(ctx)
	s.Products.Reset(ctx)
	s.Businesses.Reset(ctx)
	s.Users.Reset(ctx)
	s.log.Info("system.reset")
}

// Shutdown saves every registry. Save failures are logged by the stores.
func (s *System) Shutdown(ctx context.Context) {
	s.Users.Save(ctx)
	s.Businesses.Save(ctx)
	s.Products.Save(ctx)
	s.Orders.Save(ctx)
	s.log.Info("system.saved")
}
