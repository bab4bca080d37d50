package model

import "time"

// Operation types as stored in inmueble.operation_type
const (
	OperationPurchase = "compra"
	OperationRental   = "alquiler"
)

// StatusAvailable marks listings that may be offered to clients
const StatusAvailable = "disponible"

// Property represents a row of the inmueble table
type Property struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Location      string    `db:"location"`
	Price         float64   `db:"price"`
	Bedrooms      *int      `db:"bedrooms"`
	Bathrooms     *int      `db:"bathrooms"`
	Area          *float64  `db:"area"`
	Type          string    `db:"type"`
	OperationType string    `db:"operation_type"`
	Status        string    `db:"status"`
	ImageURL      *string   `db:"image_url"`
	CreatedAt     time.Time `db:"created_at"`
}

// PropertySummary is the flat projection handed to the model and the client.
// ImageURL is resolved by the result normalizer and may be null.
type PropertySummary struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	Price         float64  `json:"price"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	Area          *float64 `json:"area"`
	Type          string   `json:"type"`
	OperationType string   `json:"operation_type"`
	ImageURL      *string  `json:"image_url"`
}

// Summarize projects a store row, using imageURL as the resolved image
func (p Property) Summarize(imageURL *string) PropertySummary {
	return PropertySummary{
		ID:            p.ID,
		Title:         p.Title,
		Location:      p.Location,
		Price:         p.Price,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Area:          p.Area,
		Type:          p.Type,
		OperationType: p.OperationType,
		ImageURL:      imageURL,
	}
}
