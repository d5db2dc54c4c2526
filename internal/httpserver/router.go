package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zerone-labs/storefront/internal/live"
	"github.com/zerone-labs/storefront/internal/session"
)

type Deps struct {
	Shop      *ShopHTTP
	Admin     *AdminHTTP
	Assistant *AssistantHTTP
	Sessions  *session.Manager
	Hub       *live.Hub
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.GET("/products", d.Shop.ListProducts)
	api.GET("/products/search", d.Shop.SearchProducts)
	api.GET("/cart", d.Shop.GetCart)
	api.POST("/cart", d.Shop.AddToCart)
	api.DELETE("/cart/:id", d.Shop.RemoveFromCart)
	api.POST("/checkout", d.Shop.Checkout)

	api.POST("/admin/login", d.Admin.Login)

	adm := api.Group("/admin", AdminRequired(d.Sessions))
	adm.POST("/logout", d.Admin.Logout)
	adm.POST("/products", d.Admin.CreateProduct)
	adm.PUT("/products/:id", d.Admin.UpdateProduct)
	adm.DELETE("/products/:id", d.Admin.DeleteProduct)
	adm.GET("/orders", d.Admin.ListOrders)
	adm.PATCH("/orders/:id/status", d.Admin.UpdateOrderStatus)

	adm.POST("/assistant/describe", d.Assistant.Describe)
	adm.POST("/assistant/pitch", d.Assistant.Pitch)
	adm.GET("/assistant/trends", d.Assistant.Trends)

	if d.Hub != nil {
		adm.GET("/live", func(c echo.Context) error {
			d.Hub.Serve(c.Response(), c.Request())
			return nil
		})
	}
}
