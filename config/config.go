package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	Odoo         OdooConfig         `mapstructure:"odoo"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Email        EmailConfig        `mapstructure:"email"`
	Queue        QueueConfig        `mapstructure:"queue"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Log          LogConfig          `mapstructure:"log"`
	Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	Upload       UploadConfig       `mapstructure:"upload"`
	Pagination   PaginationConfig   `mapstructure:"pagination"`
	Retention    RetentionConfig    `mapstructure:"retention"`
	Plans        []PlanSeed         `mapstructure:"plans"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// StripeConfig 计费网关配置
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	ProductID     string `mapstructure:"product_id"` // 本部署唯一对应的 Stripe 产品
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// OdooConfig 租户数据库管理端配置
type OdooConfig struct {
	AdminURL       string `mapstructure:"admin_url"`
	AdminPassword  string `mapstructure:"admin_password"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	DefaultVersion string `mapstructure:"default_version"`
}

// Timeout 返回调用 Odoo 的超时时间，未配置时默认 60 秒
func (c OdooConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig S3 兼容对象存储（MinIO / AWS）
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicURL       string `mapstructure:"public_url"`
}

// Enabled 是否配置了对象存储
func (c StorageConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != ""
}

type EmailConfig struct {
	Strategy string `mapstructure:"strategy"` // console, smtp
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	EmailQueue string `mapstructure:"email_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ProvisioningConfig 未完成的开通记录的恢复策略
type ProvisioningConfig struct {
	RecoveryIntervalSeconds int `mapstructure:"recovery_interval_seconds"`
	RecoveryGraceSeconds    int `mapstructure:"recovery_grace_seconds"`
}

func (c ProvisioningConfig) RecoveryInterval() time.Duration {
	if c.RecoveryIntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.RecoveryIntervalSeconds) * time.Second
}

// RecoveryGrace 只处理超过该时长仍处于 in_flight 的记录，避免与正在进行的请求竞争
func (c ProvisioningConfig) RecoveryGrace() time.Duration {
	if c.RecoveryGraceSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.RecoveryGraceSeconds) * time.Second
}

type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`           // 最大文件大小（字节）
	AllowedExtensions []string `mapstructure:"allowed_extensions"` // 允许的扩展名
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

// RetentionConfig 清理已处理 webhook 记录与已读通知
type RetentionConfig struct {
	WebhookEventDays int `mapstructure:"webhook_event_days"`
	NotificationDays int `mapstructure:"notification_days"`
}

// PlanSeed cmd/seed 写入的套餐
type PlanSeed struct {
	Name          string  `mapstructure:"name"`
	Description   string  `mapstructure:"description"`
	Price         float64 `mapstructure:"price"`
	AnnualPrice   float64 `mapstructure:"annual_price"`
	PriceID       string  `mapstructure:"price_id"`
	AnnualPriceID string  `mapstructure:"annual_price_id"`
}

func Load(configPath string) (*Config, error) {
	// .env 只用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖，例如 STRIPE_WEBHOOK_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("odoo.default_version", "18.0")
	v.SetDefault("email.strategy", "console")
	v.SetDefault("queue.email_queue", "email_jobs")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("pagination.default_limit", 10)
	v.SetDefault("upload.max_size", 5<<20)
	v.SetDefault("retention.webhook_event_days", 30)
	v.SetDefault("retention.notification_days", 90)
}

// Validate 检查启动必需的配置项
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}
