package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 订单存储后端。
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// AppConfig 聚合运行时配置，全部通过环境变量注入，避免把凭证硬编码进仓库。
type AppConfig struct {
	HTTPAddr     string
	MaxBodyBytes int64

	// 订单存储后端：memory（默认，进程内）/ redis / sqlite
	StoreBackend string
	RedisAddr    string
	RedisDB      int
	DBPath       string
	// Redis 后端的订单保留时长，0 表示不过期（保留策略挂钩点）
	OrderTTL time.Duration

	// Kafka 订单事件（broker 为空则关闭事件发布）
	KafkaBrokers []string
	KafkaTopic   string

	// 支付宝凭证与回跳地址
	AlipayAppID      string
	AlipayPrivateKey string
	AlipayPublicKey  string
	AlipayReturnURL  string
	AlipayNotifyURL  string
	// false = 沙箱网关，true = 生产网关
	AlipayProduction bool

	// 图像生成服务
	OpenAIAPIKey     string
	StyleCatalogPath string

	// 出站调用超时：协作方无响应时不能挂死处理协程
	PaymentTimeout time.Duration
	ImageTimeout   time.Duration

	// 创建订单接口限流（需要 Redis；0 表示关闭）
	CreateRateLimit  int
	CreateRateWindow time.Duration
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MaxBodyBytes:     16 << 20,
		StoreBackend:     getEnv("STORE_BACKEND", StoreMemory),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          0,
		DBPath:           getEnv("DB_PATH", "styleapi.db"),
		KafkaBrokers:     splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "styleapi-order-events"),
		AlipayAppID:      getEnv("ALIPAY_APP_ID", ""),
		AlipayPrivateKey: getEnv("ALIPAY_PRIVATE_KEY", ""),
		AlipayPublicKey:  getEnv("ALIPAY_PUBLIC_KEY", ""),
		AlipayReturnURL:  getEnv("ALIPAY_RETURN_URL", ""),
		AlipayNotifyURL:  getEnv("ALIPAY_NOTIFY_URL", ""),
		AlipayProduction: getEnv("ALIPAY_PRODUCTION", "false") == "true",
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		StyleCatalogPath: getEnv("STYLE_CATALOG_PATH", ""),
		PaymentTimeout:   10 * time.Second,
		ImageTimeout:     60 * time.Second,
		CreateRateLimit:  0,
		CreateRateWindow: time.Second,
	}

	maxBody, err := getEnvInt("MAX_BODY_BYTES", int(cfg.MaxBodyBytes))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}
	if maxBody <= 0 {
		return AppConfig{}, fmt.Errorf("MAX_BODY_BYTES must be > 0")
	}
	cfg.MaxBodyBytes = int64(maxBody)

	switch cfg.StoreBackend {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return AppConfig{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	ttlHour, err := getEnvInt("ORDER_TTL_HOUR", 0)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ORDER_TTL_HOUR: %w", err)
	}
	if ttlHour < 0 {
		return AppConfig{}, fmt.Errorf("ORDER_TTL_HOUR must be >= 0")
	}
	cfg.OrderTTL = time.Duration(ttlHour) * time.Hour

	payTimeoutSec, err := getEnvInt("PAYMENT_TIMEOUT_SEC", int(cfg.PaymentTimeout.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid PAYMENT_TIMEOUT_SEC: %w", err)
	}
	if payTimeoutSec <= 0 {
		return AppConfig{}, fmt.Errorf("PAYMENT_TIMEOUT_SEC must be > 0")
	}
	cfg.PaymentTimeout = time.Duration(payTimeoutSec) * time.Second

	imgTimeoutSec, err := getEnvInt("IMAGE_TIMEOUT_SEC", int(cfg.ImageTimeout.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid IMAGE_TIMEOUT_SEC: %w", err)
	}
	if imgTimeoutSec <= 0 {
		return AppConfig{}, fmt.Errorf("IMAGE_TIMEOUT_SEC must be > 0")
	}
	cfg.ImageTimeout = time.Duration(imgTimeoutSec) * time.Second

	rateLimit, err := getEnvInt("CREATE_RATE_LIMIT", cfg.CreateRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CREATE_RATE_LIMIT: %w", err)
	}
	if rateLimit < 0 {
		return AppConfig{}, fmt.Errorf("CREATE_RATE_LIMIT must be >= 0")
	}
	cfg.CreateRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("CREATE_RATE_WINDOW_SEC", int(cfg.CreateRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CREATE_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("CREATE_RATE_WINDOW_SEC must be > 0")
	}
	cfg.CreateRateWindow = time.Duration(rateWindowSec) * time.Second

	if cfg.AlipayAppID == "" {
		return AppConfig{}, fmt.Errorf("ALIPAY_APP_ID must not be empty")
	}
	if cfg.AlipayPrivateKey == "" {
		return AppConfig{}, fmt.Errorf("ALIPAY_PRIVATE_KEY must not be empty")
	}
	if cfg.AlipayPublicKey == "" {
		return AppConfig{}, fmt.Errorf("ALIPAY_PUBLIC_KEY must not be empty")
	}
	if cfg.OpenAIAPIKey == "" {
		return AppConfig{}, fmt.Errorf("OPENAI_API_KEY must not be empty")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
