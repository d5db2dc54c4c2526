package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zerone-labs/storefront/internal/logging"
	"github.com/zerone-labs/storefront/internal/search"
	"github.com/zerone-labs/storefront/internal/store"
)

// ShopHTTP is the buyer surface: catalog, cart, checkout.
type ShopHTTP struct {
	Store *store.Store
	Index *search.Index // nil when elasticsearch is not configured
}

func (h *ShopHTTP) ListProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.Products())
}

func (h *ShopHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.search")

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusOK, h.Store.Products())
	}

	if h.Index != nil {
		products, err := h.Index.Search(ctx, query, 25)
		if err == nil {
			return c.JSON(http.StatusOK, products)
		}
		l.Warn("index search failed, falling back to scan", "error", err)
	}
	return c.JSON(http.StatusOK, search.Scan(h.Store.Products(), query))
}

func (h *ShopHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.Cart())
}

func (h *ShopHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.add_to_cart")

	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, "product_id required")
	}

	product, ok := h.Store.ProductByID(req.ProductID)
	if !ok {
		l.Warn("add_to_cart_error", "status", 404, "product_id", req.ProductID)
		return c.JSON(http.StatusNotFound, "product not found")
	}
	// The store takes anything; the out-of-stock guard lives here, with
	// the rest of the buyer-facing checks.
	if product.Stock <= 0 {
		l.Warn("add_to_cart_error", "status", 409, "product_id", req.ProductID)
		return c.JSON(http.StatusConflict, "out of stock")
	}

	h.Store.AddToCart(product)
	l.Info("item added to cart", "product_id", req.ProductID)
	return c.JSON(http.StatusOK, h.Store.Cart())
}

func (h *ShopHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.remove_from_cart")

	id := c.Param("id")
	if err := h.Store.RemoveFromCart(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, "cart line not found")
		}
		l.Error("remove_from_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, h.Store.Cart())
}

func (h *ShopHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.checkout")

	var req struct {
		CustomerName string `json:"customer_name"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Store.PlaceOrder(ctx, req.CustomerName)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			l.Warn("checkout_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, "customer_name required")
		}
		l.Error("checkout_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	l.Info("order placed", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}
