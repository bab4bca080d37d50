package repository

import (
	"fmt"
	"strings"

	"propchat/internal/model"
)

// MaxResults caps every property search, whatever the configured limit
const MaxResults = 5

// Column names a predicate may target. Only these constants reach the SQL text.
type Column string

const (
	ColumnStatus        Column = "status"
	ColumnOperationType Column = "operation_type"
	ColumnLocation      Column = "location"
	ColumnPrice         Column = "price"
	ColumnType          Column = "type"
	ColumnBedrooms      Column = "bedrooms"
	ColumnBathrooms     Column = "bathrooms"
)

// Operator is a comparison a predicate applies
type Operator string

const (
	OpEqual        Operator = "="
	OpAtLeast      Operator = ">="
	OpAtMost       Operator = "<="
	OpContainsFold Operator = "ILIKE"
)

// Predicate is one filter clause; Value is always bound as a parameter
type Predicate struct {
	Column   Column
	Operator Operator
	Value    any
}

// PropertyQuery describes a filtered, ordered, limited listing query
type PropertyQuery struct {
	Predicates []Predicate
	Limit      int
}

const propertyColumns = `id, title, location, price, bedrooms, bathrooms, area,
		type, operation_type, status, image_url, created_at`

// BuildPropertyQuery turns criteria into a query descriptor. The availability
// predicate is always first; every present criterion adds exactly one more.
// limit is clamped to (0, MaxResults].
func BuildPropertyQuery(criteria *model.SearchCriteria, limit int) *PropertyQuery {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	q := &PropertyQuery{
		Predicates: []Predicate{{Column: ColumnStatus, Operator: OpEqual, Value: model.StatusAvailable}},
		Limit:      limit,
	}
	if criteria == nil {
		return q
	}

	if criteria.OperationType != nil {
		q.add(ColumnOperationType, OpEqual, *criteria.OperationType)
	}
	if criteria.Location != nil {
		q.add(ColumnLocation, OpContainsFold, "%"+escapeLike(*criteria.Location)+"%")
	}
	if criteria.MaxPrice != nil {
		q.add(ColumnPrice, OpAtMost, *criteria.MaxPrice)
	}
	if criteria.MinPrice != nil {
		q.add(ColumnPrice, OpAtLeast, *criteria.MinPrice)
	}
	if criteria.PropertyType != nil {
		q.add(ColumnType, OpEqual, *criteria.PropertyType)
	}
	if criteria.Bedrooms != nil {
		q.add(ColumnBedrooms, OpAtLeast, *criteria.Bedrooms)
	}
	if criteria.Bathrooms != nil {
		q.add(ColumnBathrooms, OpAtLeast, *criteria.Bathrooms)
	}

	return q
}

func (q *PropertyQuery) add(column Column, op Operator, value any) {
	q.Predicates = append(q.Predicates, Predicate{Column: column, Operator: op, Value: value})
}

// SQL renders the query with positional placeholders and its arguments
func (q *PropertyQuery) SQL() (string, []any) {
	whereClauses := make([]string, 0, len(q.Predicates))
	args := make([]any, 0, len(q.Predicates)+1)
	for i, p := range q.Predicates {
		whereClauses = append(whereClauses, fmt.Sprintf("%s %s $%d", p.Column, p.Operator, i+1))
		args = append(args, p.Value)
	}
	args = append(args, q.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM inmueble
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d
	`, propertyColumns, strings.Join(whereClauses, " AND "), len(args))

	return query, args
}

// escapeLike neutralises LIKE wildcards so the location matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
