package main

import (
	"log"
	"os"
	"time"

	"resto-pos/internal/database"
	"resto-pos/internal/handlers"
	"resto-pos/internal/middleware"
	"resto-pos/internal/notify"
	"resto-pos/internal/printing"
	"resto-pos/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()

	// Notification collaborator: RabbitMQ when configured, otherwise a no-op
	var notifier workflow.Notifier = notify.Noop{}
	if url := os.Getenv("AMQP_URL"); url != "" {
		rabbit, err := notify.Dial(url)
		if err != nil {
			log.Println("Warning: RabbitMQ unreachable, notifications disabled:", err)
		} else {
			defer rabbit.Close()
			notifier = rabbit
			log.Println("Connected to RabbitMQ")
		}
	}

	printer := printing.Console{}
	engine := workflow.NewEngine(database.DB, notifier, printer)
	tables := workflow.NewTableManager(database.DB)
	handlers.Setup(engine, tables)
	handlers.Printer = printer

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"}, // Allow the React terminals
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)
	r.Static("/uploads", "./uploads")

	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("Registration route is disabled.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// PUBLIC TO STAFF & ADMIN
		api.GET("/menu", handlers.GetMenu)
		api.GET("/settings", handlers.GetSettings)

		api.POST("/orders", handlers.CreateOrder)
		api.GET("/orders", handlers.ListOrders)
		api.GET("/orders/:id", handlers.GetOrder)
		api.POST("/orders/:id/status", handlers.TransitionStatus)
		api.GET("/orders/:id/actions", handlers.GetAllowedActions)
		api.POST("/orders/:id/payments", handlers.RecordPayment)
		api.POST("/orders/:id/transfer", handlers.TransferOrder)
		api.POST("/items/:id/prepared", handlers.ToggleItemPrepared)

		api.GET("/orders/:id/kot", handlers.GetKOT)
		api.POST("/orders/:id/kot/print", handlers.PrintKOT)
		api.POST("/orders/:id/kot/confirm", handlers.ConfirmKOT)

		api.GET("/tables", handlers.ListTables)
		api.POST("/tables/:id/occupy", handlers.OccupyTable)
		api.POST("/tables/:id/clear", handlers.ClearTable)
		api.POST("/tables/:id/reserve", handlers.ReserveTable)
		api.POST("/tables/merge", handlers.MergeTables)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", handlers.AskAI)

			admin.POST("/upload", handlers.UploadImage)
			admin.POST("/menu", handlers.AddMenuItem)
			admin.PUT("/menu/:id", handlers.UpdateMenuItem)
			admin.DELETE("/menu/:id", handlers.DeleteMenuItem)
			admin.POST("/tables", handlers.AddTable)
			admin.PUT("/settings", handlers.UpdateSettings)
			admin.GET("/reports", handlers.GetSalesReport)
		}
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("Server starting on " + baseURL)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
