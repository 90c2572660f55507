package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auroma-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientPoints is returned when a redemption asks for more
	// points than the profile holds.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrInsufficientCredit is returned when a checkout tries to spend
	// more store credit than the profile holds.
	ErrInsufficientCredit = errors.New("insufficient store credit")
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing connection; used by tests.
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProducts retrieves the catalog
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY name")
	return products, err
}

// GetProductBySlug retrieves a product by its URL slug
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProfileByID retrieves a customer profile
func (s *Store) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetActiveCreatorCode looks up an active creator code. Matching is
// case-insensitive regardless of how the code was stored.
func (s *Store) GetActiveCreatorCode(ctx context.Context, code string) (*models.CreatorCode, error) {
	var cc models.CreatorCode
	err := s.db.GetContext(ctx, &cc,
		"SELECT * FROM creator_codes WHERE UPPER(code) = $1 AND is_active = true", code)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// GetCreatorCodeByID retrieves a creator code by ID
func (s *Store) GetCreatorCodeByID(ctx context.Context, id uuid.UUID) (*models.CreatorCode, error) {
	var cc models.CreatorCode
	err := s.db.GetContext(ctx, &cc, "SELECT * FROM creator_codes WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// UpsertSubscriber adds a newsletter subscriber, reactivating on repeat
// signups.
func (s *Store) UpsertSubscriber(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_subscribers (email, is_active)
		 VALUES ($1, true)
		 ON CONFLICT (email) DO UPDATE SET is_active = true`,
		email)
	return err
}
