package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	StoreBadger = "badger"
	StoreMongo  = "mongo"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration read from strings such as "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Config struct {
	ServiceName string `toml:"serviceName"`
	HTTPAddr    string `toml:"httpAddr"`
	BasePath    string `toml:"basePath"`
	LogLevel    string `toml:"logLevel"`

	Store      string `toml:"store"`
	BadgerPath string `toml:"badgerPath"`
	MongoURI   string `toml:"mongoURI"`
	MongoDB    string `toml:"mongoDB"`

	UploadDir     string `toml:"uploadDir"`
	ImagesPath    string `toml:"imagesPath"`
	MaxUploadSize int64  `toml:"maxUploadSize"`

	RateLimit  int      `toml:"rateLimit"`
	RateWindow Duration `toml:"rateWindow"`
	// TrustProxy reads the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy  bool     `toml:"trustProxy"`
	CORSOrigins []string `toml:"corsOrigins"`

	KafkaBrokers []string `toml:"kafkaBrokers"`
	KafkaTopic   string   `toml:"kafkaTopic"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ServiceName:   "studentblog",
		HTTPAddr:      ":3000",
		BasePath:      "/blog/v1",
		LogLevel:      "info",
		Store:         StoreBadger,
		BadgerPath:    "data/badger",
		MongoDB:       "studentblog",
		UploadDir:     "public/uploads/posts-pictures",
		ImagesPath:    "/images/posts-pictures/",
		MaxUploadSize: 100 << 20,
		RateLimit:     150,
		RateWindow:    Duration{15 * time.Minute},
		CORSOrigins:   []string{"*"},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is not empty), a .env file in the working directory (if present)
// and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("[config] failed to load .env file: %v", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.HTTPAddr = ":" + strings.TrimPrefix(port, ":")
	}
	str("HTTP_ADDR", &c.HTTPAddr)
	str("BASE_PATH", &c.BasePath)
	str("LOG_LEVEL", &c.LogLevel)
	str("BLOG_STORE", &c.Store)
	str("BADGER_PATH", &c.BadgerPath)
	str("MONGO_URI", &c.MongoURI)
	str("MONGO_DB_NAME", &c.MongoDB)
	str("UPLOAD_DIR", &c.UploadDir)
	str("KAFKA_TOPIC", &c.KafkaTopic)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.KafkaBrokers = splitList(v)
	}
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("MAX_UPLOAD_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MAX_UPLOAD_SIZE: %v", ErrInvalidConfig, err)
		}
		c.MaxUploadSize = n
	}
	if v, ok := lookup("RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RATE_LIMIT: %v", ErrInvalidConfig, err)
		}
		c.RateLimit = n
	}
	if v, ok := lookup("TRUST_PROXY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TRUST_PROXY: %v", ErrInvalidConfig, err)
		}
		c.TrustProxy = b
	}
	if v, ok := lookup("RATE_WINDOW"); ok && v != "" {
		if err := c.RateWindow.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: RATE_WINDOW: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("%w: badgerPath is required for the badger store", ErrInvalidConfig)
		}
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			return fmt.Errorf("%w: mongoURI and mongoDB are required for the mongo store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}

	if !strings.Contains(c.HTTPAddr, ":") {
		return fmt.Errorf("%w: httpAddr must look like host:port or :port, got %q", ErrInvalidConfig, c.HTTPAddr)
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("%w: basePath must start with /", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("%w: uploadDir is required", ErrInvalidConfig)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("%w: maxUploadSize must be positive", ErrInvalidConfig)
	}
	if c.RateLimit <= 0 || c.RateWindow.Duration <= 0 {
		return fmt.Errorf("%w: rateLimit and rateWindow must be positive", ErrInvalidConfig)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("%w: kafkaTopic is required when kafkaBrokers is set", ErrInvalidConfig)
	}
	return nil
}

// ConfigureLogging applies the configured log level to the standard logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("[config] unknown log level %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
