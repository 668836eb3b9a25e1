package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

type consumers struct {
	CartActivityGroup string `mapstructure:"cart_activity_group"`
}

type topics struct {
	ClientEvents string `mapstructure:"client_events"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" || t.Cert != "" || t.Key != ""
}

type Broker struct {
	Enabled            bool          `mapstructure:"enabled"`
	SeedBrokers        []string      `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string      `mapstructure:"schema_registry_urls"`
	PublishTimeout     time.Duration `mapstructure:"publish_timeout"`
	Topics             topics        `mapstructure:"topics"`
	Consumers          consumers     `mapstructure:"consumers"`
	TLS                tlsFiles      `mapstructure:"tls"`
}

type storage struct {
	KeyPrefix string `mapstructure:"key_prefix"`
}

type shop struct {
	Currency     string `mapstructure:"currency"`
	SupportURL   string `mapstructure:"support_url"`
	SupportLabel string `mapstructure:"support_label"`
	SecureCookie bool   `mapstructure:"secure_cookie"`
}

type session struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	EvictInterval time.Duration `mapstructure:"evict_interval"`
}

type mapWidget struct {
	Lat     float64 `mapstructure:"lat"`
	Lng     float64 `mapstructure:"lng"`
	Zoom    int     `mapstructure:"zoom"`
	TileURL string  `mapstructure:"tile_url"`
}

type Config struct {
	LogLevel       slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr string        `mapstructure:"http_server_addr"`
	APIURL         string        `mapstructure:"api_url"`
	APITimeout     time.Duration `mapstructure:"api_timeout"`
	SQLDB          string        `mapstructure:"sql_db"`
	Storage        storage       `mapstructure:"storage"`
	Shop           shop          `mapstructure:"shop"`
	Session        session       `mapstructure:"session"`
	Map            mapWidget     `mapstructure:"map"`
	Broker         Broker        `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("api_url", "https://naranwear.ru/api")
	v.SetDefault("api_timeout", "0s")
	v.SetDefault("storage.key_prefix", "naranCart")
	v.SetDefault("session.idle_ttl", "24h")
	v.SetDefault("session.evict_interval", "10m")
	v.SetDefault("shop.currency", "RUB")
	v.SetDefault("shop.support_url", "https://t.me/optania")
	v.SetDefault("shop.support_label", "@optania")
	v.SetDefault("shop.secure_cookie", false)
	v.SetDefault("map.lat", 55.7558)
	v.SetDefault("map.lng", 37.6173)
	v.SetDefault("map.zoom", 10)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("broker.enabled", false)
	v.SetDefault("broker.publish_timeout", "1s")
	v.SetDefault("broker.topics.client_events", "client_events")
	v.SetDefault("broker.consumers.cart_activity_group", "cart-activity")
}

// Load reads the config file named by the --config flag or the
// STOREFRONT_CONFIG_FILE env and exits the process on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeHook extends the viper defaults with text unmarshalers,
// so log_level accepts names like "debug".
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

func (c Config) validate() error {
	var errs []error

	if c.SQLDB == "" {
		errs = append(errs, errors.New("sql_db: required"))
	}

	if c.APIURL == "" {
		errs = append(errs, errors.New("api_url: required"))
	}

	if c.Session.EvictInterval <= 0 {
		errs = append(errs, errors.New("session.evict_interval: must be positive"))
	}

	if c.Broker.Enabled {
		if len(c.Broker.SeedBrokers) == 0 {
			errs = append(errs, errors.New("broker.seed_brokers: required"))
		}
		if len(c.Broker.SchemaRegistryURLs) == 0 {
			errs = append(errs, errors.New("broker.schema_registry_urls: required"))
		}
	}

	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	APIURL=%q
	StorageKeyPrefix=%q
	SessionIdleTTL=%s

	Shop:
	Currency=%q
	SupportURL=%q
	Map=%v,%v zoom %d

	BrokerConfig:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		ClientEvents=%q
	Consumers:
		CartActivityGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.APIURL,
		c.Storage.KeyPrefix,
		c.Session.IdleTTL,
		c.Shop.Currency,
		c.Shop.SupportURL,
		c.Map.Lat, c.Map.Lng, c.Map.Zoom,
		c.Broker.Enabled,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.ClientEvents,
		c.Broker.Consumers.CartActivityGroup,
	)
}
