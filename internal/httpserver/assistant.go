package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zerone-labs/storefront/internal/assistant"
	"github.com/zerone-labs/storefront/internal/logging"
	"github.com/zerone-labs/storefront/internal/store"
)

// AssistantHTTP fronts the generative-text collaborator. No retries: a
// failure becomes a generic notice and the operator tries again.
type AssistantHTTP struct {
	Store *store.Store
	AI    assistant.Assistant // nil when no API key is configured
}

func (h *AssistantHTTP) assistantError(c echo.Context, l *slog.Logger, op string, err error) error {
	if errors.Is(err, assistant.ErrUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, "assistant not configured")
	}
	l.Warn(op+"_error", "error", err)
	return c.JSON(http.StatusBadGateway, "assistant request failed")
}

func (h *AssistantHTTP) Describe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "assistant.describe")

	if h.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, "assistant not configured")
	}

	var req struct {
		Name     string `json:"name"`
		Features string `json:"features"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, "name required")
	}

	text, err := h.AI.DescribeProduct(ctx, req.Name, req.Features)
	if err != nil {
		return h.assistantError(c, l, "describe", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"description": text})
}

func (h *AssistantHTTP) Pitch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "assistant.pitch")

	if h.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, "assistant not configured")
	}

	var req struct {
		ProductName string `json:"product_name"`
		Pitch       string `json:"pitch"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if req.Pitch == "" {
		return c.JSON(http.StatusBadRequest, "pitch required")
	}

	review, err := h.AI.ReviewPitch(ctx, req.ProductName, req.Pitch)
	if err != nil {
		return h.assistantError(c, l, "pitch", err)
	}
	return c.JSON(http.StatusOK, review)
}

func (h *AssistantHTTP) Trends(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "assistant.trends")

	if h.AI == nil {
		return c.JSON(http.StatusServiceUnavailable, "assistant not configured")
	}

	insight, err := h.AI.SummarizeTrends(ctx, h.Store.Orders())
	if err != nil {
		return h.assistantError(c, l, "trends", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"insight": insight})
}
