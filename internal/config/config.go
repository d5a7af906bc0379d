// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig              `mapstructure:"app"`
	CEX        CEXConfig              `mapstructure:"cex"`
	DEX        DEXConfig              `mapstructure:"dex"`
	Chains     map[string]ChainConfig `mapstructure:"chains"`
	MarketData MarketDataConfig       `mapstructure:"marketdata"`
	Scan       ScanConfig             `mapstructure:"scan"`
	Reporting  ReportingConfig        `mapstructure:"reporting"`
	Telemetry  TelemetryConfig        `mapstructure:"telemetry"`
	Health     HealthConfig           `mapstructure:"health"`

	// Fees and Delays are normalized to strict numbers after unmarshal.
	Fees   FeesConfig `mapstructure:"-"`
	Delays DelayTable `mapstructure:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name          string `mapstructure:"name"`
	Environment   string `mapstructure:"environment"`
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
}

// CEXConfig holds order-book venue configuration.
type CEXConfig struct {
	StableSymbols []string                  `mapstructure:"stable_symbols"`
	DepthLimit    int                       `mapstructure:"depth_limit"`
	Venues        map[string]CEXVenueConfig `mapstructure:"venues"`
}

// CEXVenueConfig describes one centralized venue.
type CEXVenueConfig struct {
	OrderbookURL string `mapstructure:"orderbook_url"`
	Profile      string `mapstructure:"profile"`
	SymbolFormat string `mapstructure:"symbol_format"`
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`

	// Read by the withdrawal-fee sync.
	APIURL          string `mapstructure:"api_url"`
	WithdrawNetwork string `mapstructure:"withdraw_network"`
}

// IsStable reports whether symbol is one of the configured quote-stable assets.
func (c *CEXConfig) IsStable(symbol string) bool {
	for _, s := range c.StableSymbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// DEXConfig holds swap-quoting vendor configuration.
type DEXConfig struct {
	Proxy       string                    `mapstructure:"proxy"`
	UserAddress string                    `mapstructure:"user_address"`
	SlippageBps int                       `mapstructure:"slippage_bps"`
	Venues      map[string]DEXVenueConfig `mapstructure:"venues"`
	Strategies  map[string]StrategyConfig `mapstructure:"strategies"`
	Credentials map[string]Credentials    `mapstructure:"credentials"`
}

// StrategyConfig tunes one quote strategy, keyed by strategy name like
// Credentials.
type StrategyConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// DEXVenueConfig selects strategies per direction for one DEX venue.
type DEXVenueConfig struct {
	Proxy    string       `mapstructure:"proxy"`
	CEXToDEX StrategyKeys `mapstructure:"cex_to_dex"`
	DEXToCEX StrategyKeys `mapstructure:"dex_to_cex"`
}

// StrategyKeys names the primary and optional alternative quote strategy.
type StrategyKeys struct {
	Primary     string `mapstructure:"primary"`
	Alternative string `mapstructure:"alternative"`
}

// Credentials are vendor API secrets. Never log them.
type Credentials struct {
	APIKey     string `mapstructure:"api_key"`
	Secret     string `mapstructure:"secret"`
	Passphrase string `mapstructure:"passphrase"`
	ProjectID  string `mapstructure:"project_id"`
}

// ProxyFor returns the venue proxy prefix, falling back to the global one.
func (c *DEXConfig) ProxyFor(venue string) string {
	if v, ok := c.Venues[venue]; ok && v.Proxy != "" {
		return v.Proxy
	}
	return c.Proxy
}

// ChainConfig holds per-chain RPC and gas settings.
type ChainConfig struct {
	ChainID           uint64  `mapstructure:"chain_id"`
	RPCURL            string  `mapstructure:"rpc_url"`
	NativeSymbol      string  `mapstructure:"native_symbol"`
	GasLimit          uint64  `mapstructure:"gas_limit"`
	FallbackGwei      float64 `mapstructure:"fallback_gwei"`
	FallbackNativeUSD float64 `mapstructure:"fallback_native_usd"`
	QuoterAddress     string  `mapstructure:"quoter_address"`
	KyberSlug         string  `mapstructure:"kyber_slug"`
	OpenOceanSlug     string  `mapstructure:"openocean_slug"`
}

// IsEVM reports whether the chain is addressed by an EVM chain id.
func (c ChainConfig) IsEVM() bool {
	return c.ChainID != 0
}

// MarketDataConfig configures the gas/price/FX oracle.
type MarketDataConfig struct {
	PriceVenue string        `mapstructure:"price_venue"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	FX         FXConfig      `mapstructure:"fx"`
}

// FXConfig configures the stable-to-fiat rate sources.
type FXConfig struct {
	Fiat         string  `mapstructure:"fiat"`
	PrimaryURL   string  `mapstructure:"primary_url"`
	SecondaryURL string  `mapstructure:"secondary_url"`
	FallbackRate float64 `mapstructure:"fallback_rate"`
}

// ScanConfig configures the token scanner.
type ScanConfig struct {
	TokensFile string `mapstructure:"tokens_file"`
	BatchSize  int    `mapstructure:"batch_size"`
	Once       bool   `mapstructure:"once"`

	// ParallelTokens starts a batch's tokens together, each offset by its
	// position times the inter-token delay.
	ParallelTokens bool `mapstructure:"parallel_tokens"`
}

// ReportingConfig selects result sinks.
type ReportingConfig struct {
	Console bool        `mapstructure:"console"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the result stream publisher.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig configures the health/admin server.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("QE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	fees, err := normalizeFees(v.Get("fees.venues"))
	if err != nil {
		return nil, fmt.Errorf("invalid fees: %w", err)
	}
	cfg.Fees = fees

	delays, err := normalizeDelays(v)
	if err != nil {
		return nil, fmt.Errorf("invalid delays: %w", err)
	}
	cfg.Delays = delays

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "QE_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "QE_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "QE_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "QE_LOG_FILE")

	// Vendor secrets
	v.BindEnv("dex.credentials.1inch.api_key", "QE_ONEINCH_API_KEY", "ONEINCH_API_KEY")
	v.BindEnv("dex.credentials.0x.api_key", "QE_ZEROX_API_KEY", "ZEROX_API_KEY")
	v.BindEnv("dex.credentials.kyberswap.api_key", "QE_KYBER_CLIENT_ID")
	v.BindEnv("dex.credentials.lifi.api_key", "QE_LIFI_API_KEY")
	v.BindEnv("dex.credentials.okx.api_key", "QE_OKX_API_KEY", "OKX_API_KEY")
	v.BindEnv("dex.credentials.okx.secret", "QE_OKX_SECRET", "OKX_SECRET_KEY")
	v.BindEnv("dex.credentials.okx.passphrase", "QE_OKX_PASSPHRASE", "OKX_PASSPHRASE")
	v.BindEnv("dex.credentials.okx.project_id", "QE_OKX_PROJECT_ID", "OKX_PROJECT_ID")
	v.BindEnv("cex.venues.binance.api_key", "QE_BINANCE_API_KEY", "BINANCE_API_KEY")
	v.BindEnv("cex.venues.binance.api_secret", "QE_BINANCE_API_SECRET", "BINANCE_API_SECRET")

	v.BindEnv("dex.proxy", "QE_DEX_PROXY")
	v.BindEnv("reporting.redis.addr", "QE_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("reporting.redis.password", "QE_REDIS_PASSWORD", "REDIS_PASSWORD")

	v.BindEnv("telemetry.enabled", "QE_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "QE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_exporter", "QE_OTEL_EXPORTER")
	v.BindEnv("telemetry.otlp_endpoint", "QE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.CEX.StableSymbols) == 0 {
		return fmt.Errorf("cex.stable_symbols cannot be empty")
	}
	for name, venue := range c.CEX.Venues {
		if venue.OrderbookURL != "" && !strings.HasPrefix(venue.OrderbookURL, "http") {
			return fmt.Errorf("cex.venues.%s.orderbook_url must be an http(s) URL", name)
		}
	}
	for name, chain := range c.Chains {
		if chain.GasLimit == 0 {
			return fmt.Errorf("chains.%s.gas_limit must be positive", name)
		}
		if chain.QuoterAddress != "" && !common.IsHexAddress(chain.QuoterAddress) {
			return fmt.Errorf("invalid chains.%s.quoter_address: %s", name, chain.QuoterAddress)
		}
	}
	if c.Scan.BatchSize <= 0 {
		return fmt.Errorf("scan.batch_size must be positive")
	}
	if c.MarketData.CacheTTL <= 0 {
		return fmt.Errorf("marketdata.cache_ttl must be positive")
	}
	if c.Reporting.Redis.Enabled && c.Reporting.Redis.Addr == "" {
		return fmt.Errorf("reporting.redis.addr is required when redis reporting is enabled")
	}
	return nil
}

// Defaults returns the configuration built from defaults only.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := fromViper(v)
	if err != nil {
		panic("config: invalid defaults: " + err.Error())
	}
	return cfg
}
