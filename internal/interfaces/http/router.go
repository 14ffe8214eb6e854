package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/facturacion-api/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC   *billing.CompanyUseCase
	ClientUC    *billing.ClientUseCase
	ProductUC   *billing.ProductUseCase
	CreateDoc   *billing.CreateDocumentUseCase
	EmitDoc     *billing.EmitUseCase
	StatusDoc   *billing.StatusUseCase
	Mapper      *billing.Mapper
	NumberingUC *billing.NumberingUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Companies (público: alta inicial de la empresa emisora)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Numbering ranges (protegido)
	ranges := protected.Group("/ranges")
	rangeHandler := NewRangeHandler(deps.NumberingUC)
	ranges.Post("/", rangeHandler.Create)
	ranges.Get("/", rangeHandler.List)
	ranges.Get("/:id", rangeHandler.GetByID)
	ranges.Get("/:id/stats", rangeHandler.Stats)

	// Documents (protegido, núcleo de la emisión)
	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.CreateDoc, deps.EmitDoc, deps.StatusDoc, deps.Mapper)
	documents.Post("/", documentHandler.Create)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Get("/:id/validate", documentHandler.Validate)
	documents.Post("/:id/emit", documentHandler.Emit)
	documents.Get("/:id/status", documentHandler.Status)
	documents.Get("/:id/remote-status", documentHandler.RemoteStatus)
	documents.Get("/:id/pdf", documentHandler.DownloadPDF)
	documents.Get("/:id/xml", documentHandler.DownloadXML)
}
