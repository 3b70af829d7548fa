// Package http wires the kiosk handlers onto an echo instance.
package http

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/handlers"
	authmw "github.com/dmaidana/burger_kiosk/internal/middleware/auth"
	"github.com/dmaidana/burger_kiosk/internal/mykafka"
	"github.com/dmaidana/burger_kiosk/internal/service/order"
)

type Deps struct {
	DB        *gorm.DB
	Orders    *order.Service
	Producer  *mykafka.Producer
	ES        *elasticsearch.Client
	ESIndex   string
	JWTSecret []byte
}

func Register(e *echo.Echo, deps Deps) {
	orderHandler := &handlers.OrderHandler{Service: deps.Orders, Producer: deps.Producer}
	catalogHandler := &handlers.CatalogHandler{DB: deps.DB, Pricing: deps.Orders}
	clientHandler := &handlers.ClientHandler{DB: deps.DB}
	authHandler := &handlers.AuthHandler{DB: deps.DB, JWTSecret: deps.JWTSecret}
	searchHandler := &handlers.SearchHandler{ES: deps.ES, Index: deps.ESIndex}

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		db, err := deps.DB.DB()
		if err != nil || db.Ping() != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "down"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/productos", catalogHandler.GetProducts)
	api.GET("/productos/:id", catalogHandler.GetProduct)
	api.GET("/productos/categoria/:categoria", catalogHandler.GetProductsByCategory)
	api.POST("/productos/:id/calcular-precio", catalogHandler.CalculatePrice)
	api.GET("/categorias", catalogHandler.GetCategories)
	api.GET("/ingredientes", catalogHandler.GetIngredients)
	api.GET("/ingredientes/:id", catalogHandler.GetIngredient)
	api.GET("/buscar", searchHandler.SearchProducts)

	api.GET("/clientes", clientHandler.GetClients)
	api.GET("/clientes/:id", clientHandler.GetClient)
	api.GET("/cupones/clientes/:dni", clientHandler.GetCouponsByDNI)

	api.POST("/pedidos", orderHandler.Create)
	api.GET("/pedidos", orderHandler.List)
	api.GET("/pedidos/:id", orderHandler.Get)
	api.GET("/pedidos/:id/resumen", orderHandler.Summary)
	api.POST("/pedidos/:id/productos", orderHandler.AddLines)
	api.DELETE("/pedidos/:id/productos/:idLinea", orderHandler.RemoveLine)

	staff := api.Group("", authmw.RequireStaff(deps.JWTSecret))
	staff.PATCH("/pedidos/:id/estado", orderHandler.SetStatus)
	staff.DELETE("/pedidos/:id", orderHandler.Delete)
	staff.GET("/pedidos/estadisticas/resumen", orderHandler.Stats)
}
