package store

import (
	"context"
	"fmt"
	"time"

	"chickenshop-admin/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
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

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an open connection
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetCategoriesWithProducts retrieves every category with its products, including empty categories
func (s *Store) GetCategoriesWithProducts(ctx context.Context) ([]models.CategoryWithProducts, error) {
	var categories []models.Category
	if err := s.db.SelectContext(ctx, &categories,
		"SELECT id, name, image_url FROM categories ORDER BY id"); err != nil {
		return nil, err
	}

	products, err := s.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]models.Product, len(categories))
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	result := make([]models.CategoryWithProducts, 0, len(categories))
	for _, c := range categories {
		result = append(result, models.CategoryWithProducts{
			Category: c,
			Products: byCategory[c.ID],
		})
	}
	return result, nil
}

// GetLatestUsers retrieves the most recently created users
func (s *Store) GetLatestUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users,
		"SELECT id, email, type, created_at FROM users ORDER BY created_at DESC NULLS LAST LIMIT $1", limit)
	return users, err
}

// CreateNotification stores a notification for a user
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, n, query, n.UserID, n.Message)
}

// GetNotificationsByUserID retrieves a user's notifications, newest first
func (s *Store) GetNotificationsByUserID(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return notifications, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
