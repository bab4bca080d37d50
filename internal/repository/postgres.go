package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"propchat/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresRepository reads listings and their images from PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository connects to the property store
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return NewPostgresRepositoryFromDB(db), nil
}

// NewPostgresRepositoryFromDB wraps an existing handle
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the store is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SearchProperties runs a query built by BuildPropertyQuery
func (r *PostgresRepository) SearchProperties(ctx context.Context, q *PropertyQuery) ([]model.Property, error) {
	query, args := q.SQL()

	properties := []model.Property{}
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	return properties, nil
}

// PrimaryImage returns the lowest display_order image of a property, or nil if it has none
func (r *PostgresRepository) PrimaryImage(ctx context.Context, propertyID int64) (*string, error) {
	query := `
		SELECT image_url
		FROM inmueble_images
		WHERE inmueble_id = $1
		ORDER BY display_order ASC
		LIMIT 1
	`
	var imageURL sql.NullString
	err := r.db.GetContext(ctx, &imageURL, query, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image for property %d: %w", propertyID, err)
	}
	if !imageURL.Valid || imageURL.String == "" {
		return nil, nil
	}
	return &imageURL.String, nil
}
