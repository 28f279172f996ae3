package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Logistica-api/internal/application/auth"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// metricsExporter lo implementa *metrics.Metrics.
type metricsExporter interface {
	Handler() nethttp.Handler
	Middleware() fiber.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC *usecase.CompanyUseCase
	DepotUC   *usecase.DepotUseCase
	MemberUC  *usecase.MemberUseCase
	ClientUC  *usecase.ClientUseCase
	ProductUC *usecase.ProductUseCase
	AuthUC    *auth.AuthUseCase
	Guard     authorizer
	Resolver  principalResolver
	Metrics   metricsExporter // opcional
	Log       *logger.Logger
	AppName   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token); la autorización por recurso la decide el Guard
	protected := api.Group("/", AuthMiddleware(deps.Resolver))
	protected.Post("/auth/logout", authHandler.Logout)

	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.Guard, deps.Log)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)

	depots := protected.Group("/depots")
	depotHandler := NewDepotHandler(deps.DepotUC, deps.Guard, deps.Log)
	depots.Post("/", depotHandler.Create)
	depots.Get("/", depotHandler.List)
	depots.Get("/:id", depotHandler.GetByID)
	depots.Get("/:id/stock", depotHandler.Stock)
	depots.Put("/:id", depotHandler.Update)
	depots.Delete("/:id", depotHandler.Delete)

	members := protected.Group("/members")
	memberHandler := NewMemberHandler(deps.MemberUC, deps.Guard, deps.Log)
	members.Post("/", memberHandler.Create)
	members.Get("/", memberHandler.List)
	members.Get("/:id", memberHandler.GetByID)
	members.Put("/:id", memberHandler.Update)
	members.Put("/:id/depot", memberHandler.Attach)
	members.Delete("/:id", memberHandler.Delete)

	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC, deps.Guard, deps.Log)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Delete("/:id", clientHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Guard, deps.Log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id/availability", productHandler.SetAvailability)
	products.Delete("/:id", productHandler.Delete)
}
