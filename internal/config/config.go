package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ofblood/website/internal/log"
)

type Application struct {
	Env  string `mapstructure:"env"  json:"env"`
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"password"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Shopify struct {
	StoreDomain     string `mapstructure:"store_domain"     json:"store_domain"`
	StorefrontToken string `mapstructure:"storefront_token" json:"-"`
	WebhookSecret   string `mapstructure:"webhook_secret"   json:"-"`
}

type Printful struct {
	ApiKey        string `mapstructure:"api_key"        json:"-"`
	WebhookSecret string `mapstructure:"webhook_secret" json:"-"`
}

type Resend struct {
	ApiKey       string `mapstructure:"api_key"       json:"-"`
	AudienceId   string `mapstructure:"audience_id"   json:"audience_id"`
	FromOrders   string `mapstructure:"from_orders"   json:"from_orders"`
	FromSite     string `mapstructure:"from_site"     json:"from_site"`
	ContactInbox string `mapstructure:"contact_inbox" json:"contact_inbox"`
}

type Admin struct {
	Password      string `mapstructure:"password"       json:"-"`
	SessionSecret string `mapstructure:"session_secret" json:"-"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Shopify     `mapstructure:"shopify"     json:"shopify"`
	Printful    `mapstructure:"printful"    json:"printful"`
	Resend      `mapstructure:"resend"      json:"resend"`
	Admin       `mapstructure:"admin"       json:"admin"`
}

// InitConfig reads the yaml config under ./env plus environment overrides and
// returns the one Config instance the process passes around by reference.
func InitConfig(c context.Context, filename string) *Config {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main InitConfig").
		Str(log.KeyProcess, "init config").
		Str("filename", filename).
		Logger()

	viper.SetConfigName(filename)
	viper.AddConfigPath("./env")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	err := viper.ReadInConfig()
	if err != nil {
		err = fmt.Errorf("error when reading config with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("read config")

	cfg := Config{}
	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	err = viper.Unmarshal(&cfg)
	if err != nil {
		err = fmt.Errorf("error unmarshaling config with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("unmarshalled config")

	return &cfg
}
