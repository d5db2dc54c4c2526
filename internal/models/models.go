package models

// OrderStatus values are stored verbatim in the persisted snapshots, so the
// casing here is the wire format.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// CartItem is a full product snapshot plus a quantity. Later edits or
// deletion of the product do not touch existing cart lines.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

type Order struct {
	ID           string      `json:"id"`
	Items        []CartItem  `json:"items"`
	Total        float64     `json:"total"`
	Status       OrderStatus `json:"status"`
	CustomerName string      `json:"customerName"`
	Date         string      `json:"date"`
}

// PitchReview is the structured verdict returned by the pitch assistant.
type PitchReview struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}
