package store

import "github.com/zerone-labs/storefront/internal/models"

// Seed is the starter catalog used when no products snapshot exists yet.
func Seed() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Neural Link Hub",
			Description: "Next-gen cognitive interface for seamless device control.",
			Price:       1299,
			Stock:       15,
			Image:       "https://images.unsplash.com/photo-1550745165-9bc0b252726f?w=400",
			Category:    "Hardware",
		},
		{
			ID:          "2",
			Name:        "Aero-Frame Glasses",
			Description: "Ultra-lightweight AR display with 4K resolution.",
			Price:       899,
			Stock:       24,
			Image:       "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=400",
			Category:    "Wearables",
		},
		{
			ID:          "3",
			Name:        "Void-Sound Earbuds",
			Description: "Absolute silence with active sonic cancellation.",
			Price:       299,
			Stock:       50,
			Image:       "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=400",
			Category:    "Audio",
		},
	}
}
