package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// EnvPrefix is prepended to every environment override (SITEAPI_MAIL_TIMEOUT, ...).
const EnvPrefix = "SITEAPI"

// ---- Root ----

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Turnstile TurnstileConfig `mapstructure:"turnstile"`
	Mail      MailConfig      `mapstructure:"mail"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Inbound   InboundConfig   `mapstructure:"inbound"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	BodyLimit       string        `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustCFHeader   bool          `mapstructure:"trust_cf_header"` // only behind Cloudflare
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type RateLimitConfig struct {
	ContactPerWindow int           `mapstructure:"contact_per_window"`
	Window           time.Duration `mapstructure:"window"`
}

type TurnstileConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	VerifyURL string        `mapstructure:"verify_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type BreakerConfig struct {
	FailThreshold int           `mapstructure:"fail_threshold"`
	OpenFor       time.Duration `mapstructure:"open_for"`
}

type MailConfig struct {
	Strategy string        `mapstructure:"strategy"` // priority | round_robin
	Order    []string      `mapstructure:"order"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
	Resend   ResendConfig  `mapstructure:"resend"`
	SES      SESConfig     `mapstructure:"ses"`
	SMTP     SMTPConfig    `mapstructure:"smtp"`
	Stdout   StdoutConfig  `mapstructure:"stdout"`
}

type ResendConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type SESConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type StdoutConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ContactConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

type InboundConfig struct {
	WebhookSecret string            `mapstructure:"webhook_secret"`
	ForwardTo     []string          `mapstructure:"forward_to"`
	ForwardFrom   string            `mapstructure:"forward_from"`
	ReplyFrom     string            `mapstructure:"reply_from"`
	SchedulingURL string            `mapstructure:"scheduling_url"`
	Company       string            `mapstructure:"company"`
	SignerName    string            `mapstructure:"signer_name"`
	SignerTitle   string            `mapstructure:"signer_title"`
	LogoURL       string            `mapstructure:"logo_url"`
	Address       string            `mapstructure:"address"`
	Routes        map[string]string `mapstructure:"routes"` // local part -> support|general|sales
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (SITEAPI_*).
// The provider secrets also honour their conventional unprefixed names.
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		// a missing file keeps the defaults; anything else is a broken config
		if err := v.MergeInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// env override (SITEAPI_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	binds := map[string]string{
		"mail.resend.api_key":    "RESEND_API_KEY",
		"turnstile.secret_key":   "TURNSTILE_SECRET_KEY",
		"inbound.webhook_secret": "RESEND_WEBHOOK_SECRET",
	}
	for key, env := range binds {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
