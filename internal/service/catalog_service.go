package service

import (
	"context"
	"errors"

	"auroma-service/internal/models"
	"auroma-service/internal/store"
	"auroma-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService serves the product catalog and the newsletter signup.
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// ListProducts returns the full catalog
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// GetProduct retrieves a single product by its URL slug
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.store.GetProductBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	return product, err
}

// Subscribe adds an email to the newsletter list. Re-subscribing an
// address that previously unsubscribed reactivates it.
func (s *CatalogService) Subscribe(ctx context.Context, email string) error {
	if err := s.store.UpsertSubscriber(ctx, email); err != nil {
		return err
	}

	util.NewsletterSubscribesTotal.Inc()
	s.logger.Info("Newsletter subscription", zap.String("email", email))
	return nil
}
