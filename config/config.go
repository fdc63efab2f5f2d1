package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL" required:"true"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Sandbox switches the webscr endpoint and enables the IPN simulator
	// accommodation (test_ipn pending is treated as completed).
	PayPalSandbox bool `env:"PAYPAL_SANDBOX" envDefault:"false"`
	// VerifyURL overrides the webscr endpoint; empty selects the live or
	// sandbox endpoint based on PayPalSandbox.
	VerifyURL         string        `env:"PAYPAL_VERIFY_URL"`
	UserAgent         string        `env:"PAYPAL_USER_AGENT" envDefault:"PayPalPlus/1.0"`
	HTTPClientTimeout time.Duration `env:"HTTP_PAYPAL_CLIENT_TIMEOUT" envDefault:"20s"`

	// REST credentials for outbound refunds.
	PayPalAPIBaseURL   string `env:"PAYPAL_API_BASE_URL" envDefault:"https://api.paypal.com"`
	PayPalClientID     string `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `env:"PAYPAL_CLIENT_SECRET"`

	// StatusVocabulary selects the provider status wording: "ipn" or "webhook".
	StatusVocabulary string `env:"STATUS_VOCABULARY" envDefault:"ipn"`

	KafkaBrokers            []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaPaymentUpdateTopic string   `env:"KAFKA_PAYMENT_UPDATE_TOPIC" envDefault:"payments.updates"`

	OpensearchUrls       []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexAudit string   `env:"OPENSEARCH_INDEX_AUDIT" envDefault:"ipn-audit"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
