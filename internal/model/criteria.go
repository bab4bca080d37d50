package model

import (
	"strconv"
)

// SearchCriteria holds the optional filters of a property search.
// A nil field means "no constraint". JSON names match the capability
// schema advertised to the model.
type SearchCriteria struct {
	OperationType *string  `json:"operationType,omitempty" jsonschema:"enum=compra,enum=alquiler" jsonschema_description:"Tipo de operación: compra o alquiler"`
	Location      *string  `json:"location,omitempty" jsonschema_description:"Ubicación deseada en cualquier parte de Venezuela (Valencia, Caracas, Maracaibo, Barquisimeto, ciudad, estado, zona, etc.)"`
	MaxPrice      *float64 `json:"maxPrice,omitempty" jsonschema_description:"Precio máximo en USD"`
	MinPrice      *float64 `json:"minPrice,omitempty" jsonschema_description:"Precio mínimo en USD"`
	PropertyType  *string  `json:"propertyType,omitempty" jsonschema_description:"Tipo de propiedad: apartamento, casa, local comercial, oficina, terreno, quinta"`
	Bedrooms      *int     `json:"bedrooms,omitempty" jsonschema:"minimum=0" jsonschema_description:"Número mínimo de habitaciones"`
	Bathrooms     *int     `json:"bathrooms,omitempty" jsonschema:"minimum=0" jsonschema_description:"Número mínimo de baños"`
}

// Params flattens the present criteria into a string map, used for cache keys
func (c *SearchCriteria) Params() map[string]string {
	params := map[string]string{}
	if c == nil {
		return params
	}
	if c.OperationType != nil {
		params["operationType"] = *c.OperationType
	}
	if c.Location != nil {
		params["location"] = *c.Location
	}
	if c.MaxPrice != nil {
		params["maxPrice"] = strconv.FormatFloat(*c.MaxPrice, 'f', -1, 64)
	}
	if c.MinPrice != nil {
		params["minPrice"] = strconv.FormatFloat(*c.MinPrice, 'f', -1, 64)
	}
	if c.PropertyType != nil {
		params["propertyType"] = *c.PropertyType
	}
	if c.Bedrooms != nil {
		params["bedrooms"] = strconv.Itoa(*c.Bedrooms)
	}
	if c.Bathrooms != nil {
		params["bathrooms"] = strconv.Itoa(*c.Bathrooms)
	}
	return params
}
