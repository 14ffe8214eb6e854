package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/facturacion-api/internal/application/billing"
	infrafactus "github.com/tu-usuario/facturacion-api/internal/infrastructure/factus"
	infrapdf "github.com/tu-usuario/facturacion-api/internal/infrastructure/pdf"
	"github.com/tu-usuario/facturacion-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/facturacion-api/internal/interfaces/http"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("factus_env", cfg.Factus.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	rangeRepo := postgres.NewNumberingRangeRepository(pool)
	credentialRepo := postgres.NewCredentialRepository(pool)

	// Proveedor de facturación: token, envío con reintentos y consultas.
	tokenManager := infrafactus.NewTokenManager(cfg.Factus, credentialRepo, log)
	sender := infrafactus.NewSender(cfg.Factus.BaseURL, tokenManager, log)
	providerClient := infrafactus.NewClient(cfg.Factus.BaseURL, tokenManager)

	numberingUC := billing.NewNumberingUseCase(rangeRepo)
	mapper := billing.NewMapper(documentRepo, clientRepo, productRepo, companyRepo, numberingUC, cfg.Factus, log)
	reconciler := billing.NewReconciler(documentRepo, log)

	createDocUC := billing.NewCreateDocumentUseCase(documentRepo, clientRepo, productRepo, log)
	emitUC := billing.NewEmitUseCase(documentRepo, mapper, sender, reconciler, cfg.Factus, log)

	// PDF local: representación gráfica cuando el proveedor aún no publica el archivo.
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(documentRepo, clientRepo, productRepo, companyRepo, pdfGenerator)
	statusUC := billing.NewStatusUseCase(documentRepo, providerClient, pdfUC, log)

	companyUC := billing.NewCompanyUseCase(companyRepo)
	clientUC := billing.NewClientUseCase(clientRepo)
	productUC := billing.NewProductUseCase(productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:   companyUC,
		ClientUC:    clientUC,
		ProductUC:   productUC,
		CreateDoc:   createDocUC,
		EmitDoc:     emitUC,
		StatusDoc:   statusUC,
		Mapper:      mapper,
		NumberingUC: numberingUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
