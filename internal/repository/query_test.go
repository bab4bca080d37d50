package repository

import (
	"fmt"
	"strings"
	"testing"

	"propchat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func fullCriteria() *model.SearchCriteria {
	return &model.SearchCriteria{
		OperationType: strPtr(model.OperationPurchase),
		Location:      strPtr("Caracas"),
		MaxPrice:      floatPtr(150000),
		MinPrice:      floatPtr(50000),
		PropertyType:  strPtr("apartamento"),
		Bedrooms:      intPtr(2),
		Bathrooms:     intPtr(1),
	}
}

func TestBuildPropertyQuery_OnePredicatePerPresentCriterion(t *testing.T) {
	setters := []func(c *model.SearchCriteria){
		func(c *model.SearchCriteria) { c.OperationType = nil },
		func(c *model.SearchCriteria) { c.Location = nil },
		func(c *model.SearchCriteria) { c.MaxPrice = nil },
		func(c *model.SearchCriteria) { c.MinPrice = nil },
		func(c *model.SearchCriteria) { c.PropertyType = nil },
		func(c *model.SearchCriteria) { c.Bedrooms = nil },
		func(c *model.SearchCriteria) { c.Bathrooms = nil },
	}

	// every subset of the seven optional fields
	for mask := 0; mask < 1<<len(setters); mask++ {
		criteria := fullCriteria()
		present := len(setters)
		for i, clear := range setters {
			if mask&(1<<i) != 0 {
				clear(criteria)
				present--
			}
		}

		q := BuildPropertyQuery(criteria, MaxResults)
		require.Len(t, q.Predicates, present+1, "mask %b", mask)
		assert.Equal(t, Predicate{Column: ColumnStatus, Operator: OpEqual, Value: model.StatusAvailable}, q.Predicates[0])

		query, args := q.SQL()
		assert.Equal(t, present, strings.Count(query, " AND "), "mask %b", mask)
		assert.Len(t, args, present+2)
	}
}

func TestBuildPropertyQuery_NilCriteria(t *testing.T) {
	q := BuildPropertyQuery(nil, 0)
	require.Len(t, q.Predicates, 1)
	assert.Equal(t, MaxResults, q.Limit)

	query, args := q.SQL()
	assert.Contains(t, query, "WHERE status = $1")
	assert.Equal(t, []any{model.StatusAvailable, MaxResults}, args)
}

func TestBuildPropertyQuery_RentalInValencia(t *testing.T) {
	q := BuildPropertyQuery(&model.SearchCriteria{
		OperationType: strPtr(model.OperationRental),
		Location:      strPtr("Valencia"),
		MaxPrice:      floatPtr(500),
	}, MaxResults)

	query, args := q.SQL()
	assert.Contains(t, query, "WHERE status = $1 AND operation_type = $2 AND location ILIKE $3 AND price <= $4")
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Contains(t, query, "LIMIT $5")
	assert.Equal(t, []any{"disponible", "alquiler", "%Valencia%", float64(500), 5}, args)
}

func TestBuildPropertyQuery_LimitIsClamped(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: -1, want: MaxResults},
		{limit: 0, want: MaxResults},
		{limit: 3, want: 3},
		{limit: 5, want: 5},
		{limit: 50, want: MaxResults},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPropertyQuery(nil, tt.limit).Limit)
		})
	}
}

func TestBuildPropertyQuery_ValuesAreNeverInterpolated(t *testing.T) {
	injection := "x'; DROP TABLE inmueble; --"
	q := BuildPropertyQuery(&model.SearchCriteria{
		Location:     strPtr(injection),
		PropertyType: strPtr(injection),
	}, MaxResults)

	query, args := q.SQL()
	assert.NotContains(t, query, "DROP TABLE")
	assert.Contains(t, args, injection)
}

func TestBuildPropertyQuery_EscapesLikeWildcards(t *testing.T) {
	q := BuildPropertyQuery(&model.SearchCriteria{Location: strPtr(`50%_off\`)}, MaxResults)
	assert.Equal(t, `%50\%\_off\\%`, q.Predicates[1].Value)
}

func TestBuildPropertyQuery_MinAboveMaxIsKept(t *testing.T) {
	q := BuildPropertyQuery(&model.SearchCriteria{
		MinPrice: floatPtr(900),
		MaxPrice: floatPtr(100),
	}, MaxResults)

	require.Len(t, q.Predicates, 3)
	assert.Equal(t, Predicate{Column: ColumnPrice, Operator: OpAtMost, Value: float64(100)}, q.Predicates[1])
	assert.Equal(t, Predicate{Column: ColumnPrice, Operator: OpAtLeast, Value: float64(900)}, q.Predicates[2])
}
