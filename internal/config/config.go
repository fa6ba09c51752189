package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DeliveryLog      = "log"
	DeliverySES      = "ses"
	DeliveryRabbitmq = "rabbitmq"
)

type Config struct {
	IsTestMode     bool     `env:"TEST_MODE" envDefault:"false"`
	Secret         string   `env:"SECRET"`
	Port           uint16   `env:"PORT" envDefault:"9090"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// Optional in TEST_MODE only, without Redis every call is allowed.
	RedisURL string `env:"REDIS_URL"`

	BcryptHasherCost                  int           `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	PasswordResetValidDurationMinutes int           `env:"PASSWORD_RESET_VALID_DURATION_MINUTES" envDefault:"15"`
	PasswordResetPurgePeriod          time.Duration `env:"PASSWORD_RESET_PURGE_PERIOD" envDefault:"10m"`
	AccessTokenValidDuration          time.Duration `env:"ACCESS_TOKEN_VALID_DURATION" envDefault:"24h"`

	PasswordResetDelivery string `env:"PASSWORD_RESET_DELIVERY" envDefault:"log"`

	AwsRegion                     string `env:"AWS_REGION"`
	AwsAccessKey                  string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                  string `env:"AWS_SECRET_KEY"`
	AwsEmailSender                string `env:"AWS_EMAIL_SENDER"`
	AwsEmailPasswordResetTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE"`

	RabbitmqURL                string `env:"RABBITMQ_URL"`
	RabbitmqPasswordResetQueue string `env:"RABBITMQ_PASSWORD_RESET_QUEUE" envDefault:"password-reset-token-ready"`
}

// Load reads the API server settings from the environment, after loading the optional
// files (".env" by default).
func Load(files ...string) (*Config, error) {
	return load(files, (*Config).validate)
}

// LoadMailer reads the settings cmd/mailer needs. API only settings are not checked.
func LoadMailer(files ...string) (*Config, error) {
	return load(files, (*Config).validateMailer)
}

// LoadMigrate reads the settings cmd/migrate needs.
func LoadMigrate(files ...string) (*Config, error) {
	return load(files, (*Config).validateDatabase)
}

func load(files []string, validate func(c *Config) error) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load %s: %w", file, err)
		}
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	if err := validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("SECRET must not be empty")
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if c.RedisURL == "" && !c.IsTestMode {
		return fmt.Errorf("REDIS_URL is required outside TEST_MODE")
	}
	if c.PasswordResetValidDurationMinutes <= 0 {
		return fmt.Errorf("PASSWORD_RESET_VALID_DURATION_MINUTES must be positive")
	}
	if c.PasswordResetPurgePeriod <= 0 {
		return fmt.Errorf("PASSWORD_RESET_PURGE_PERIOD must be positive")
	}

	switch c.PasswordResetDelivery {
	case DeliveryLog:
		if !c.IsTestMode {
			return fmt.Errorf("PASSWORD_RESET_DELIVERY=log is allowed in TEST_MODE only")
		}
	case DeliverySES:
		if err := c.validateAws(); err != nil {
			return err
		}
	case DeliveryRabbitmq:
		if c.RabbitmqURL == "" {
			return fmt.Errorf("RABBITMQ_URL must be set for PASSWORD_RESET_DELIVERY=rabbitmq")
		}
	default:
		return fmt.Errorf("PASSWORD_RESET_DELIVERY must be log, ses or rabbitmq, got %q", c.PasswordResetDelivery)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.DBDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	return nil
}

func (c *Config) validateAws() error {
	if c.AwsRegion == "" || c.AwsAccessKey == "" || c.AwsSecretKey == "" {
		return fmt.Errorf("AWS_REGION, AWS_ACCESS_KEY and AWS_SECRET_KEY must be set")
	}
	if c.AwsEmailSender == "" || c.AwsEmailPasswordResetTemplate == "" {
		return fmt.Errorf("AWS_EMAIL_SENDER and AWS_EMAIL_PASSWORD_RESET_TEMPLATE must be set")
	}
	return nil
}

func (c *Config) validateMailer() error {
	if c.RabbitmqURL == "" {
		return fmt.Errorf("RABBITMQ_URL must be set")
	}
	return c.validateAws()
}
