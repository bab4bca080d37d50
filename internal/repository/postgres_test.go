package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"propchat/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepositoryFromDB(sqlx.NewDb(db, "postgres")), mock
}

var propertyRowColumns = []string{
	"id", "title", "location", "price", "bedrooms", "bathrooms", "area",
	"type", "operation_type", "status", "image_url", "created_at",
}

func TestSearchProperties(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(propertyRowColumns).
		AddRow(7, "Apartamento en El Viñedo", "Valencia, Carabobo", 450.0, 2, 2, 85.5, "apartamento", "alquiler", "disponible", "https://img/7.jpg", created).
		AddRow(3, "Terreno", "Valencia", 300.0, nil, nil, nil, "terreno", "alquiler", "disponible", nil, created.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("FROM inmueble")).
		WithArgs("disponible", "alquiler", "%Valencia%", float64(500), 5).
		WillReturnRows(rows)

	q := BuildPropertyQuery(&model.SearchCriteria{
		OperationType: strPtr("alquiler"),
		Location:      strPtr("Valencia"),
		MaxPrice:      floatPtr(500),
	}, 5)

	got, err := repo.SearchProperties(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, 2, *got[0].Bedrooms)
	assert.Equal(t, "https://img/7.jpg", *got[0].ImageURL)
	assert.Nil(t, got[1].Bedrooms)
	assert.Nil(t, got[1].ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchProperties_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM inmueble")).WillReturnError(errors.New("connection refused"))

	_, err := repo.SearchProperties(context.Background(), BuildPropertyQuery(nil, 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPrimaryImage(t *testing.T) {
	imageQuery := regexp.QuoteMeta("FROM inmueble_images")

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(imageQuery).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow("https://img/7-cover.jpg"))

		got, err := repo.PrimaryImage(context.Background(), 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "https://img/7-cover.jpg", *got)
	})

	t.Run("no image", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(imageQuery).WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"image_url"}))

		got, err := repo.PrimaryImage(context.Background(), 8)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("null url", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(imageQuery).WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow(nil))

		got, err := repo.PrimaryImage(context.Background(), 9)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("error", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(imageQuery).WithArgs(int64(10)).WillReturnError(errors.New("timeout"))

		_, err := repo.PrimaryImage(context.Background(), 10)
		assert.Error(t, err)
	})
}
