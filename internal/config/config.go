package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

// MAX_ACTIVATION_TOKEN_LENGTH keeps encoded tokens within the
// activation_token column, varchar(128).
const MAX_ACTIVATION_TOKEN_LENGTH = 96

type NotificationGateway string

const (
	SES      NotificationGateway = "ses"
	RabbitMQ NotificationGateway = "rabbitmq"
)

type Config struct {
	Port       int    `env:"PORT" envDefault:"8080"`
	IsTestMode bool   `env:"TEST_MODE" envDefault:"false"`
	Secret     string `env:"SECRET,required"`

	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`

	BcryptHasherCost      int  `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	ActivationTokenLength int  `env:"ACTIVATION_TOKEN_LENGTH" envDefault:"16"`
	DefaultPageSize       uint `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`

	NotificationGateway NotificationGateway `env:"NOTIFICATION_GATEWAY" envDefault:"ses"`

	AwsRegion                       string  `env:"AWS_REGION"`
	AwsAccessKey                    string  `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                    string  `env:"AWS_SECRET_KEY"`
	AwsEmailSender                  string  `env:"AWS_EMAIL_SENDER"`
	AwsEmailActivateAccountTemplate string  `env:"AWS_EMAIL_ACTIVATE_ACCOUNT_TEMPLATE"`
	AwsEmailActivationUrl           url.URL `env:"AWS_EMAIL_ACTIVATION_URL"`

	RabbitmqURL                             string        `env:"RABBITMQ_URL"`
	RabbitmqActivationNoticeQueue           string        `env:"RABBITMQ_ACTIVATION_NOTICE_QUEUE" envDefault:"activation-notice"`
	RabbitmqActivationNoticeDeadLetterQueue string        `env:"RABBITMQ_ACTIVATION_NOTICE_DEAD_LETTER_QUEUE" envDefault:"activation-notice.dead"`
	RabbitmqPublishConfirmTimeout           time.Duration `env:"RABBITMQ_PUBLISH_CONFIRM_TIMEOUT" envDefault:"5s"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (*Config, error) {
	return load(env.Options{})
}

func load(options env.Options) (*Config, error) {
	config := &Config{}
	if err := env.Parse(config, options); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.ActivationTokenLength <= 0 {
		return fmt.Errorf("ACTIVATION_TOKEN_LENGTH must be positive")
	}
	if c.ActivationTokenLength > MAX_ACTIVATION_TOKEN_LENGTH {
		return fmt.Errorf("ACTIVATION_TOKEN_LENGTH must not exceed %d", MAX_ACTIVATION_TOKEN_LENGTH)
	}
	if c.DefaultPageSize == 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive")
	}

	switch c.NotificationGateway {
	case SES:
		if c.IsTestMode {
			return nil
		}
		return c.ValidateEmailSettings()
	case RabbitMQ:
		return c.ValidateRabbitmqSettings()
	default:
		return fmt.Errorf("invalid NOTIFICATION_GATEWAY value: %q", c.NotificationGateway)
	}
}

// ValidateEmailSettings checks the settings needed to mail notices through SES.
func (c *Config) ValidateEmailSettings() error {
	if c.AwsRegion == "" || c.AwsAccessKey == "" || c.AwsSecretKey == "" {
		return fmt.Errorf("AWS_REGION, AWS_ACCESS_KEY and AWS_SECRET_KEY must be set")
	}
	if c.AwsEmailSender == "" || c.AwsEmailActivateAccountTemplate == "" {
		return fmt.Errorf("AWS_EMAIL_SENDER and AWS_EMAIL_ACTIVATE_ACCOUNT_TEMPLATE must be set")
	}
	if c.AwsEmailActivationUrl.String() == "" {
		return fmt.Errorf("AWS_EMAIL_ACTIVATION_URL must be set")
	}
	return nil
}

func (c *Config) ValidateRabbitmqSettings() error {
	if c.RabbitmqURL == "" {
		return fmt.Errorf("RABBITMQ_URL must be set")
	}
	if c.RabbitmqActivationNoticeQueue == "" {
		return fmt.Errorf("RABBITMQ_ACTIVATION_NOTICE_QUEUE must be set")
	}
	if c.RabbitmqActivationNoticeDeadLetterQueue == "" {
		return fmt.Errorf("RABBITMQ_ACTIVATION_NOTICE_DEAD_LETTER_QUEUE must be set")
	}
	if c.RabbitmqActivationNoticeDeadLetterQueue == c.RabbitmqActivationNoticeQueue {
		return fmt.Errorf("RABBITMQ_ACTIVATION_NOTICE_DEAD_LETTER_QUEUE must differ from RABBITMQ_ACTIVATION_NOTICE_QUEUE")
	}
	if c.RabbitmqPublishConfirmTimeout <= 0 {
		return fmt.Errorf("RABBITMQ_PUBLISH_CONFIRM_TIMEOUT must be positive")
	}
	return nil
}
