package container

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// ServiceContainer wires every service with its dependencies. Controllers
// resolve services by name through GetService.
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	redisService     services.InterfaceRedisService
	foxessService    services.InterfaceFoxESSService
	ledgerService    services.InterfaceLedgerService
	siteService      services.InterfaceSiteService
	zohoService      services.InterfaceZohoService
	s3Service        services.InterfaceS3Service
	customerService  services.InterfaceCustomerService
	complaintService services.InterfaceComplaintService

	mu sync.RWMutex
}

// NewServiceContainer creates the container and initializes every service.
// Redis and S3 are optional; their consumers degrade without them.
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	c := &ServiceContainer{db: db, config: cfg}
	c.initializeServices()
	return c
}

func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	redisService, err := services.NewRedisService(c.config)
	if err != nil {
		Logger.Warning("redis unavailable, running without cache: %v", err)
	} else {
		c.redisService = redisService
	}

	c.foxessService = services.NewFoxESSService(c.config, c.redisService)
	c.ledgerService = services.NewLedgerService(c.db)
	c.siteService = services.NewSiteService(c.config, c.ledgerService, c.foxessService, c.redisService)
	c.zohoService = services.NewZohoService(c.config, c.db)
	c.customerService = services.NewCustomerService(c.db)
	c.complaintService = services.NewComplaintService(c.db)

	s3Service, err := services.NewS3Service(context.Background(), c.config)
	if err != nil {
		Logger.Warning("s3 unavailable, document verification disabled: %v", err)
	} else {
		c.s3Service = s3Service
	}
}

// GetService returns the service registered under name, or nil
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "redis":
		return c.redisService
	case "foxess":
		return c.foxessService
	case "ledger":
		return c.ledgerService
	case "site":
		return c.siteService
	case "zoho":
		return c.zohoService
	case "s3":
		return c.s3Service
	case "customer":
		return c.customerService
	case "complaint":
		return c.complaintService
	default:
		return nil
	}
}

// GetDB returns the shared database handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
