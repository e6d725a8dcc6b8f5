package model

// Product represents a handicraft or pickle product in the backend catalogue.
// Prices are in minor currency units (paise).
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ArtisanName string `json:"artisanName"`
	ImageURL    string `json:"imageUrl"`
	Stock       int    `json:"stock"`
}

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}
