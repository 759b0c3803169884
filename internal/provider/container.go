package provider

import (
	"github.com/hausmarkt/internal/cache"
	"github.com/hausmarkt/internal/config"
	"github.com/hausmarkt/internal/logger"
	"github.com/hausmarkt/internal/models"
	"github.com/hausmarkt/internal/queue"
	"github.com/hausmarkt/internal/repository"
	"github.com/hausmarkt/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	ListingRepo       repository.ListingRepository
	PaymentRecordRepo repository.PaymentRecordRepository

	// Services
	AuthService        *service.AuthService
	ListingService     *service.ListingService
	CheckoutService    *service.CheckoutService
	FulfillmentService *service.FulfillmentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ListingRepo = repository.NewListingRepository(db)
	c.PaymentRecordRepo = repository.NewPaymentRecordRepository(db)
}

func (c *Container) initServices() {
	stripeCfg := service.StripeConfigFromApp(c.Config)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.ListingService = service.NewListingService(c.ListingRepo)
	c.CheckoutService = service.NewCheckoutService(c.Config, c.ListingRepo)
	c.FulfillmentService = service.NewFulfillmentService(c.ListingRepo, c.PaymentRecordRepo, c.QueueClient, stripeCfg)
}
