package provider

import (
	"github.com/giftlink-next/internal/cache"
	"github.com/giftlink-next/internal/chain"
	"github.com/giftlink-next/internal/config"
	"github.com/giftlink-next/internal/logger"
	"github.com/giftlink-next/internal/models"
	"github.com/giftlink-next/internal/queue"
	"github.com/giftlink-next/internal/repository"
	"github.com/giftlink-next/internal/service"
	"github.com/giftlink-next/internal/verifier"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Clients
	ChainClient    *chain.Client
	VerifierClient *verifier.Client

	// Repositories
	GiftRepo        repository.GiftRepository
	ClaimRecordRepo repository.ClaimRecordRepository

	// Services
	AuthService *service.AuthService
	GiftService *service.GiftService
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

	c.initClients()
	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initClients() {
	network := c.Config.Chain.Active()
	chainClient, err := chain.NewClient(chain.Config{
		RPCURL:         network.RPCURL,
		ChainID:        network.ChainID,
		GiftAddress:    network.GiftAddress,
		TokenAddress:   network.TokenAddress,
		TimeoutSeconds: c.Config.Chain.TimeoutSeconds,
	})
	if err != nil {
		logger.Errorw("provider_init_chain_client_failed", "error", err)
		panic(err)
	}
	c.ChainClient = chainClient

	verifierClient, err := verifier.NewClient(verifier.Config{
		BaseURL:        c.Config.Verifier.BaseURL,
		APIKey:         c.Config.Verifier.APIKey,
		TimeoutSeconds: c.Config.Verifier.TimeoutSeconds,
	})
	if err != nil {
		logger.Errorw("provider_init_verifier_client_failed", "error", err)
		panic(err)
	}
	c.VerifierClient = verifierClient
}

func (c *Container) initRepositories() {
	db := models.DB
	c.GiftRepo = repository.NewGiftRepository(db)
	c.ClaimRecordRepo = repository.NewClaimRecordRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config)
	c.GiftService = service.NewGiftService(
		c.Config,
		c.GiftRepo,
		c.ClaimRecordRepo,
		c.ChainClient,
		c.VerifierClient,
		c.QueueClient,
	)
}
