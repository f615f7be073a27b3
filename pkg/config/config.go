package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultChatURL is the DeepSeek chat completions endpoint.
const DefaultChatURL = "https://api.deepseek.com/chat/completions"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout" validate:"required"`
		// Collect aggregates error logs and ships them to the logs topic.
		Collect         bool          `yaml:"collect"`
		CollectInterval time.Duration `yaml:"collect_interval" default:"30s"`
	} `yaml:"log"`
	Simulation struct {
		TickInterval  time.Duration `yaml:"tick_interval" default:"800ms" validate:"gt=0"`
		TrendInterval time.Duration `yaml:"trend_interval" default:"20s" validate:"gt=0"`
		WindowSize    int           `yaml:"window_size" default:"40" validate:"min=1"`
		// Seed 0 draws from the wall clock.
		Seed uint64 `yaml:"seed"`
	} `yaml:"simulation"`
	Lifecycle struct {
		BuyDelay  time.Duration `yaml:"buy_delay" default:"2500ms" validate:"gt=0"`
		SellDelay time.Duration `yaml:"sell_delay" default:"1500ms" validate:"gt=0"`
	} `yaml:"lifecycle"`
	Feeds struct {
		NewsInterval     time.Duration `yaml:"news_interval" default:"4s" validate:"gt=0"`
		LogInterval      time.Duration `yaml:"log_interval" default:"1200ms" validate:"gt=0"`
		HeatmapInterval  time.Duration `yaml:"heatmap_interval" default:"500ms" validate:"gt=0"`
		RadarInterval    time.Duration `yaml:"radar_interval" default:"50ms" validate:"gt=0"`
		LatencyInterval  time.Duration `yaml:"latency_interval" default:"2s" validate:"gt=0"`
		TaskInterval     time.Duration `yaml:"task_interval" default:"3s" validate:"gt=0"`
		JitterInterval   time.Duration `yaml:"jitter_interval" default:"1s" validate:"gt=0"`
		DefaultLanguage  string        `yaml:"default_language" default:"CN" validate:"oneof=CN EN"`
		DefaultStock     string        `yaml:"default_stock" default:"CAMBRICON" validate:"oneof=CAMBRICON BYD ZTE"`
		SessionIdleAfter time.Duration `yaml:"session_idle_after" default:"30m"`
	} `yaml:"feeds"`
	Auth struct {
		JWTSecret  string        `yaml:"jwt_secret" validate:"required,min=16"`
		TokenTTL   time.Duration `yaml:"token_ttl" default:"12h" validate:"gt=0"`
		LoginDelay time.Duration `yaml:"login_delay" default:"1500ms"`
		BcryptCost int           `yaml:"bcrypt_cost" default:"10" validate:"min=4,max=31"`
	} `yaml:"auth"`
	Chat struct {
		Provider     string        `yaml:"provider" default:"deepseek" validate:"oneof=deepseek anthropic"`
		URL          string        `yaml:"url" default:"https://api.deepseek.com/chat/completions" validate:"required,url"`
		APIKey       string        `yaml:"api_key"`
		Model        string        `yaml:"model" default:"deepseek-chat" validate:"required"`
		MaxTokens    int64         `yaml:"max_tokens" default:"1024" validate:"min=1"`
		Timeout      time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
		SystemPrompt string        `yaml:"system_prompt" default:"You are \"Yi Jin Jing AI\", a professional financial analysis assistant. Provide concise, data-driven insights on financial markets, risk control, and investment strategies. Use professional tone."`
		Greeting     string        `yaml:"greeting" default:"Hello. I am the Yi Jin Jing AI Copilot. I have access to real-time market vectors and risk models. How can I assist with your portfolio today?"`
		Fallback     string        `yaml:"fallback" default:"⚠️ Connection Error: Unable to reach DeepSeek Neural Core. Please check latency or API quota."`
	} `yaml:"chat"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		EventsTopic  string   `yaml:"events_topic" default:"dashboard.events"`
		LogsTopic    string   `yaml:"logs_topic" default:"dashboard.logs"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"true"`
		} `yaml:"producer"`
		Consumer struct {
			// GroupPrefix is suffixed with an instance id so every replica sees every event.
			GroupPrefix string        `yaml:"group_prefix" default:"yijinjing-relay"`
			Workers     int           `yaml:"workers" default:"4" validate:"min=1"`
			BufferSize  int           `yaml:"buffer_size" default:"256"`
			RetryMax    int           `yaml:"retry_max" default:"3"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic    string        `yaml:"dlq_topic"`
			MinBytes    int           `yaml:"min_bytes" default:"1"`
			MaxBytes    int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"yijinjing"`
		L1TTL    time.Duration `yaml:"l1_ttl" default:"1m"`
	} `yaml:"redis"`
	RateLimit struct {
		LoginPerMinute int `yaml:"login_per_minute" default:"10" validate:"min=1"`
		LoginBurst     int `yaml:"login_burst" default:"5" validate:"min=1"`
		ChatPerMinute  int `yaml:"chat_per_minute" default:"20" validate:"min=1"`
		ChatBurst      int `yaml:"chat_burst" default:"3" validate:"min=1"`
	} `yaml:"rate_limit"`
}

var validate = validator.New()

// Default returns a configuration with every default applied and no file read.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present) and the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Override with environment variables
	if v := os.Getenv("CHAT_API_KEY"); v != "" {
		c.Chat.APIKey = v
	}
	if v := os.Getenv("CHAT_PROVIDER"); v != "" {
		c.Chat.Provider = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Chat.Provider == "anthropic" && c.Chat.APIKey == "" {
		return fmt.Errorf("chat.api_key is required for the anthropic provider")
	}
	return nil
}
