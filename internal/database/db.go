package database

import (
	"log"
	"os"
	"time"

	"resto-pos/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the MySQL database from DB_DSN and syncs the schema.
func Connect() {
	dsn := os.Getenv("DB_DSN")

	if dsn == "" {
		log.Fatal("Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var db *gorm.DB
	var err error

	// Wait for the DB to be ready (docker-compose startup order)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	Use(db)
	log.Println("Connected to MySQL, schema synced")
}

// Use installs a database handle and migrates the schema. Split out of
// Connect so tests can point the package at an in-memory database.
func Use(db *gorm.DB) {
	DB = db

	err := DB.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.WorkflowSettings{},
		&models.Counter{},
	)
	if err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}
}
