// Package assistant wraps the generative-text collaborator behind a small
// capability interface so the rest of the system can be tested against a
// deterministic fake.
package assistant

import (
	"context"
	"errors"

	"github.com/zerone-labs/storefront/internal/models"
)

var (
	// ErrUnavailable means no assistant is configured at all.
	ErrUnavailable = errors.New("assistant not configured")
	// ErrBadResponse means the collaborator answered with something empty
	// or outside the requested shape.
	ErrBadResponse = errors.New("assistant returned an unusable response")
)

type Assistant interface {
	// DescribeProduct writes short premium-tone product copy from a name
	// and free-text feature hints.
	DescribeProduct(ctx context.Context, name, features string) (string, error)

	// SummarizeTrends returns one brief insight over the order history.
	SummarizeTrends(ctx context.Context, orders []models.Order) (string, error)

	// ReviewPitch critiques a sales pitch for the named product and
	// returns a structured score/feedback/suggestions verdict.
	ReviewPitch(ctx context.Context, productName, pitch string) (*models.PitchReview, error)
}
