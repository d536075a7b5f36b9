// @title           RSolar CRM Backend API
// @version         1.0
// @description     Operations backend for solar equipment customers: CRM records, complaint tracking, invoicing lookups and live plant monitoring

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /api
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/app/routes"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/models"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/database"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		Logger.Warning("no .env file loaded: %v", err)
	} else {
		Logger.Info(".env file loaded")
	}

	cfg := config.GetConfig()

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("failed to create database connection pool: %v", err)
	}
	db := pool.GetDB()

	if err := autoMigrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	r := routes.SetupRouter(db, cfg)

	printSystemInfo(pool)

	Logger.Info("server listening on http://0.0.0.0:%s", cfg.ServerPort)
	if err := r.Run("0.0.0.0:" + cfg.ServerPort); err != nil {
		Logger.Error("server exited: %v", err)
		os.Exit(1)
	}
}

// autoMigrate adds new columns and tables, never drops. The intake flows
// own destructive schema changes.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.CustomerAgreement{},
		&models.PanelDetail{},
		&models.InverterDetail{},
		&models.Complaint{},
		&models.ComplaintCategory{},
		&models.ComplaintUpdate{},
		&models.Department{},
		&models.DailyYield{},
		&models.AllowedEmail{},
	)
}

// printSystemInfo logs pool and runtime state at startup
func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		log.Printf("database pool: %+v", stats)
	}

	log.Printf("cpu cores: %d", runtime.NumCPU())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("memory: Alloc=%v MiB, Sys=%v MiB", m.Alloc/1024/1024, m.Sys/1024/1024)
}
