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
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Storage   StorageConfig   `mapstructure:"storage"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Email     EmailConfig     `mapstructure:"email"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Views     ViewsConfig     `mapstructure:"views"`
	Upload    UploadConfig    `mapstructure:"upload"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Search    SearchConfig    `mapstructure:"search"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql | postgres | sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
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

// AdminConfig 管理员配置，password_hash 为 bcrypt 哈希
type AdminConfig struct {
	Username     string   `mapstructure:"username"`
	PasswordHash string   `mapstructure:"password_hash"`
	DeleteKey    string   `mapstructure:"delete_key"`
	GithubLogins []string `mapstructure:"github_logins"`
}

type StorageConfig struct {
	Provider          string    `mapstructure:"provider"` // oss | s3
	Prefix            string    `mapstructure:"prefix"`
	LinkExpireMinutes int       `mapstructure:"link_expire_minutes"`
	OSS               OSSConfig `mapstructure:"oss"`
	S3                S3Config  `mapstructure:"s3"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type S3Config struct {
	URL             string `mapstructure:"url"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost   string `mapstructure:"smtp_host"`
	SMTPPort   int    `mapstructure:"smtp_port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	NotifyTo   string `mapstructure:"notify_to"`
	SiteURL    string `mapstructure:"site_url"`
}

type QueueConfig struct {
	ViewQueue  string `mapstructure:"view_queue"`
	ViewTopic  string `mapstructure:"view_topic"`
	AsyncViews bool   `mapstructure:"async_views"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type ViewsConfig struct {
	RetentionDays int    `mapstructure:"retention_days"` // 0 表示永久保留
	ReconcileSpec string `mapstructure:"reconcile_spec"`
	PruneSpec     string `mapstructure:"prune_spec"`
}

type UploadConfig struct {
	RoutingThreshold      int64    `mapstructure:"routing_threshold"`  // 直传阈值（字节）
	ProxiedMaxBody        int64    `mapstructure:"proxied_max_body"`   // 代理上传请求体上限
	MaxImageSize          int64    `mapstructure:"max_image_size"`     // 图片上限
	MaxPDFSize            int64    `mapstructure:"max_pdf_size"`       // PDF 上限
	ProxiedTimeoutSeconds int      `mapstructure:"proxied_timeout"`    // 代理上传超时（秒）
	AllowedTypes          []string `mapstructure:"allowed_types"`      // 允许的 MIME 类型
	TokenExpireMinutes    int      `mapstructure:"token_expire_mins"`  // 直传令牌有效期
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type CacheConfig struct {
	Size       int `mapstructure:"size"`
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type SearchConfig struct {
	MeiliURL    string `mapstructure:"meili_url"`
	MeiliAPIKey string `mapstructure:"meili_api_key"`
	Index       string `mapstructure:"index"`
}

type RateLimitConfig struct {
	CommentsPerMinute int `mapstructure:"comments_per_minute"`
	ViewsPerMinute    int `mapstructure:"views_per_minute"`
}

// ProxiedTimeout 代理上传超时
func (c UploadConfig) ProxiedTimeout() time.Duration {
	return time.Duration(c.ProxiedTimeoutSeconds) * time.Second
}

// LinkExpire 预签名链接有效期
func (c StorageConfig) LinkExpire() time.Duration {
	return time.Duration(c.LinkExpireMinutes) * time.Minute
}

// TTL 缓存有效期
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func Load(configPath string) (*Config, error) {
	// .env 可选，仅用于本地开发
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
	setDefaults(v)

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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

// Default 返回仅包含默认值的配置，测试与命令行工具使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("storage.provider", "oss")
	v.SetDefault("storage.prefix", "uploads")
	v.SetDefault("storage.link_expire_minutes", 15)

	v.SetDefault("queue.view_queue", "portfolio:views")
	v.SetDefault("queue.view_topic", "portfolio:view_counts")
	v.SetDefault("queue.async_views", true)
	v.SetDefault("queue.max_workers", 2)

	v.SetDefault("views.retention_days", 0)
	v.SetDefault("views.reconcile_spec", "@hourly")
	v.SetDefault("views.prune_spec", "@daily")

	v.SetDefault("upload.routing_threshold", 4<<20)
	v.SetDefault("upload.proxied_max_body", 4718592) // 4.5 MiB
	v.SetDefault("upload.max_image_size", 10<<20)
	v.SetDefault("upload.max_pdf_size", 20<<20)
	v.SetDefault("upload.proxied_timeout", 30)
	v.SetDefault("upload.token_expire_mins", 15)
	v.SetDefault("upload.allowed_types", []string{
		"application/pdf",
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
	})

	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})

	v.SetDefault("cache.size", 500)
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("search.index", "portfolio_blog_posts")

	v.SetDefault("ratelimit.comments_per_minute", 5)
	v.SetDefault("ratelimit.views_per_minute", 60)
}

// Validate 校验必要配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Storage.Provider {
	case "oss", "s3", "memory":
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	return nil
}
