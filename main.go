package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sklep/internal/apierror"
	"sklep/internal/config"
	"sklep/internal/handlers"
	"sklep/internal/models"
	"sklep/internal/repositories"
	"sklep/internal/services"
	"sklep/pkg/cache"
	"sklep/pkg/groq"
	"sklep/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.OrderStatus{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	statusRepo := repositories.NewGORMStatusRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- RabbitMQ ---
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer mqClient.Close()

	// --- Redis description cache (optional) ---
	var descriptionCache services.DescriptionCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis cache: %v", err)
		}
		defer redisCache.Close()
		descriptionCache = redisCache
	} else {
		log.Println("REDIS_URL not set, AI description caching disabled")
	}

	// --- External text-generation API (optional) ---
	var generator services.DescriptionGenerator
	if cfg.GroqAPIKey != "" {
		generator = groq.NewClient(groq.Config{URL: cfg.GroqURL, APIKey: cfg.GroqAPIKey})
	} else {
		log.Println("GROQ_API_KEY not set, AI descriptions disabled")
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	productService := services.NewProductService(productRepo, categoryRepo, generator, descriptionCache)
	orderService := services.NewOrderService(orderRepo, productRepo, statusRepo, mqClient)
	importService := services.NewImportService(productRepo, categoryRepo)

	// --- Seed fixed data ---
	seedDatabase(categoryRepo, statusRepo, userRepo, authService)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, cfg.RefreshTokenTTL())
	productHandler := handlers.NewProductHandler(productService, authService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	importHandler := handlers.NewImportHandler(importService, authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowHeaders:     "Origin, X-Requested-With, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// --- API Routes ---
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	importHandler.RegisterRoutes(api)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order event consumer ---
	go func() {
		log.Println("Starting RabbitMQ consumer for order events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received %s event (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
			// Downstream processing (inventory, mail) would hook in here.
			return nil
		}
		if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}()

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedDatabase creates the fixed categories, the four order statuses and the
// default employee account when they are absent.
func seedDatabase(categoryRepo repositories.CategoryRepository, statusRepo repositories.StatusRepository, userRepo repositories.UserRepository, authService *services.AuthService) {
	categories := []string{"Electronics", "Clothing", "Books", "Home & Kitchen"}
	for _, name := range categories {
		if _, err := categoryRepo.GetByName(name); err == nil {
			continue
		}
		if err := categoryRepo.Create(&models.Category{Name: name}); err != nil {
			log.Printf("Error seeding category %s: %v", name, err)
		}
	}

	statuses := []string{
		models.StatusUnapproved,
		models.StatusApproved,
		models.StatusCancelled,
		models.StatusCompleted,
	}
	for _, name := range statuses {
		if _, err := statusRepo.GetByName(name); err == nil {
			continue
		}
		if err := statusRepo.Create(&models.OrderStatus{Name: name}); err != nil {
			log.Printf("Error seeding order status %s: %v", name, err)
		}
	}

	if _, err := userRepo.GetByUsername("pracownik1"); err != nil {
		if _, err := authService.RegisterUser("pracownik1", "haslo123", models.RoleEmployee); err != nil && !apierror.IsKind(err, apierror.KindConflict) {
			log.Printf("Error seeding employee account: %v", err)
		}
	}
}
