package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zerone-labs/storefront/internal/logging"
	"github.com/zerone-labs/storefront/internal/models"
	"github.com/zerone-labs/storefront/internal/session"
	"github.com/zerone-labs/storefront/internal/store"
)

// AdminHTTP is the management surface: login, inventory CRUD, orders.
type AdminHTTP struct {
	Store    *store.Store
	Sessions *session.Manager
}

func (h *AdminHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	if !h.Store.Authenticate(req.Password) {
		l.Warn("login rejected", "status", 401)
		return c.JSON(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.Sessions.Issue(time.Now())
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	l.Info("admin logged in")
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AdminHTTP) Logout(c echo.Context) error {
	h.Store.Deauthenticate()
	return c.NoContent(http.StatusNoContent)
}

type productRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

func (r *productRequest) validate() error {
	if r.Name == "" {
		return errors.New("name required")
	}
	if r.Price < 0 {
		return errors.New("price must be >= 0")
	}
	if r.Stock < 0 {
		return errors.New("stock must be >= 0")
	}
	return nil
}

func (r *productRequest) product() models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Image:       r.Image,
		Category:    r.Category,
	}
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, err.Error())
	}
	// Id generation is the caller's job, and this handler is the caller.
	// Same timestamp-derived scheme as the original dashboard.
	if req.ID == "" {
		req.ID = fmt.Sprintf("%d", time.Now().UnixMilli())
	}

	p := req.product()
	h.Store.AddProduct(ctx, p)
	l.Info("product created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_product")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	req.ID = c.Param("id")
	if err := req.validate(); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, err.Error())
	}

	if err := h.Store.UpdateProduct(ctx, req.product()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, "product not found")
		}
		l.Error("update_product_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, req.product())
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id := c.Param("id")
	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, "product not found")
		}
		l.Error("delete_product_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}
	l.Info("product deleted", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.Orders())
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	orderID := c.Param("id")
	if err := h.Store.UpdateOrderStatus(ctx, orderID, req.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrValidation):
			l.Warn("update_order_status_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, "unknown status")
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, "order not found")
		default:
			l.Error("update_order_status_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("order status updated", "order_id", orderID, "new_status", req.Status)
	return c.NoContent(http.StatusNoContent)
}
