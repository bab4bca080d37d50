package service

import (
	"fmt"
	"math"
	"strings"

	"propchat/internal/model"
	"propchat/internal/utils"
)

// rawCriteria mirrors SearchCriteria but decodes counts as numbers so that
// "2.0" is accepted and "2.5" is rejected with a clear message
type rawCriteria struct {
	OperationType *string  `json:"operationType"`
	Location      *string  `json:"location"`
	MaxPrice      *float64 `json:"maxPrice"`
	MinPrice      *float64 `json:"minPrice"`
	PropertyType  *string  `json:"propertyType"`
	Bedrooms      *float64 `json:"bedrooms"`
	Bathrooms     *float64 `json:"bathrooms"`
}

// ParseSearchCriteria decodes and validates the arguments of a searchProperties call.
// Empty arguments mean "no constraints".
func ParseSearchCriteria(arguments string) (*model.SearchCriteria, error) {
	var raw rawCriteria
	if strings.TrimSpace(arguments) != "" {
		if err := utils.ParseAIJSON(arguments, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}

	criteria := &model.SearchCriteria{
		OperationType: normalizeText(raw.OperationType),
		Location:      normalizeText(raw.Location),
		MaxPrice:      raw.MaxPrice,
		MinPrice:      raw.MinPrice,
		PropertyType:  normalizeText(raw.PropertyType),
	}

	if criteria.OperationType != nil {
		op := strings.ToLower(*criteria.OperationType)
		criteria.OperationType = &op
	}
	if criteria.PropertyType != nil {
		canonical := utils.CanonicalPropertyType(*criteria.PropertyType)
		criteria.PropertyType = &canonical
	}

	var err error
	if criteria.Bedrooms, err = wholeCount("bedrooms", raw.Bedrooms); err != nil {
		return nil, err
	}
	if criteria.Bathrooms, err = wholeCount("bathrooms", raw.Bathrooms); err != nil {
		return nil, err
	}

	if err := ValidateSearchCriteria(criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

// ValidateSearchCriteria applies the schema rules to already-typed criteria.
// minPrice > maxPrice is allowed: the search then simply matches nothing.
func ValidateSearchCriteria(c *model.SearchCriteria) error {
	if c == nil {
		return nil
	}

	if c.OperationType != nil {
		switch *c.OperationType {
		case model.OperationPurchase, model.OperationRental:
		default:
			return fmt.Errorf("%w: operationType must be one of: %s, %s, got %q",
				ErrInvalidArguments, model.OperationPurchase, model.OperationRental, *c.OperationType)
		}
	}

	if c.Bedrooms != nil && *c.Bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must not be negative", ErrInvalidArguments)
	}
	if c.Bathrooms != nil && *c.Bathrooms < 0 {
		return fmt.Errorf("%w: bathrooms must not be negative", ErrInvalidArguments)
	}

	return nil
}

// normalizeText trims a string criterion and treats blank as absent
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func wholeCount(field string, v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if *v < 0 || *v != math.Trunc(*v) || *v > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer, got %v", ErrInvalidArguments, field, *v)
	}
	n := int(*v)
	return &n, nil
}
