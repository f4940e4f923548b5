package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	rd "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"styleapi/internal/config"
	"styleapi/internal/payment"
	"styleapi/internal/queue"
	"styleapi/internal/router"
	"styleapi/internal/store"
	"styleapi/internal/styler"
)

func main() {
	// .env 仅本地开发用，不存在时静默跳过
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 订单存储后端
	var (
		orderStore store.Store
		rdb        *rd.Client
	)
	switch cfg.StoreBackend {
	case config.StoreRedis:
		rdb = rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		orderStore = store.NewRedis(rdb, cfg.OrderTTL)
	case config.StoreSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
		if err != nil {
			logger.Fatal("open sqlite", zap.Error(err))
		}
		orderStore, err = store.NewGorm(db)
		if err != nil {
			logger.Fatal("migrate sqlite", zap.Error(err))
		}
	default:
		orderStore = store.NewMemory()
	}
	// 限流需要 Redis，即便订单存储走别的后端
	if rdb == nil && cfg.CreateRateLimit > 0 {
		rdb = rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	}

	// Kafka 订单事件（可选）
	var events payment.EventSink
	if len(cfg.KafkaBrokers) > 0 {
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	}

	// 支付网关
	gateway, err := payment.NewAlipayGateway(payment.AlipayConfig{
		AppID:      cfg.AlipayAppID,
		PrivateKey: cfg.AlipayPrivateKey,
		PublicKey:  cfg.AlipayPublicKey,
		ReturnURL:  cfg.AlipayReturnURL,
		NotifyURL:  cfg.AlipayNotifyURL,
		Production: cfg.AlipayProduction,
	})
	if err != nil {
		logger.Fatal("init alipay gateway", zap.Error(err))
	}
	pay := payment.NewService(orderStore, gateway, events, logger, cfg.PaymentTimeout)

	// 图像风格化
	styles := styler.DefaultCatalog()
	if cfg.StyleCatalogPath != "" {
		loaded, err := styler.LoadCatalog(cfg.StyleCatalogPath)
		if err != nil {
			logger.Fatal("load style catalog", zap.Error(err))
		}
		styles = loaded
	}
	sty := styler.NewService(styler.NewOpenAIGenerator(cfg.OpenAIAPIKey), styles, logger, cfg.ImageTimeout)

	r := gin.Default()
	router.Setup(r, pay, sty, rdb, cfg)

	logger.Info("server starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.StoreBackend),
		zap.Int("styles", len(styles)),
	)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
