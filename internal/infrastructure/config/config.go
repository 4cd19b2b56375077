// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Mail source backends
const (
	MailSourceGmail = "gmail"
	MailSourceIMAP  = "imap"
)

// Credential store backends
const (
	CredentialBackendMongo   = "mongo"
	CredentialBackendKeyring = "keyring"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CronSecret   string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (sync run audit, optional)
	PostgresURI string

	// Google OAuth / Gmail
	GoogleClientID     string
	GoogleClientSecret string
	GmailRedirectURL   string

	// Mail source
	MailSource   string
	IMAPHost     string
	IMAPPort     string
	IMAPUsername string
	IMAPPassword string
	IMAPTLS      bool

	// Credentials
	CredentialBackend string
	KeyringDir        string

	// Sync
	Transactions     SourceConfig
	Bookings         SourceConfig
	SyncInterval     time.Duration
	PropertyTimezone string
	PropertyName     string

	// WhatsApp
	WhatsAppAPIURL        string
	WhatsAppPhoneNumberID string
	WhatsAppAccessToken   string
	WhatsAppTemplate      string
	WhatsAppUseTemplate   bool
	WhatsAppLanguage      string
	ReminderDelay         time.Duration
}

// SourceConfig describes the mailbox filter for one sync purpose
type SourceConfig struct {
	From       string
	Subject    string
	MaxResults int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	config := &Config{
		AppVersion:   v.GetString("APP_VERSION"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		Port:         v.GetString("PORT"),
		ReadTimeout:  time.Duration(v.GetInt("READ_TIMEOUT")) * time.Second,
		WriteTimeout: time.Duration(v.GetInt("WRITE_TIMEOUT")) * time.Second,
		CronSecret:   v.GetString("CRON_SECRET"),

		MongoURI:      v.GetString("MONGODB_DSN"),
		MongoDB:       v.GetString("MONGO_DB"),
		MongoUser:     v.GetString("MONGO_USER"),
		MongoPassword: v.GetString("MONGO_PASSWORD"),

		PostgresURI: v.GetString("POSTGRES_DSN"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GmailRedirectURL:   v.GetString("GMAIL_REDIRECT_URL"),

		MailSource:   strings.ToLower(v.GetString("MAIL_SOURCE")),
		IMAPHost:     v.GetString("IMAP_HOST"),
		IMAPPort:     v.GetString("IMAP_PORT"),
		IMAPUsername: v.GetString("IMAP_USERNAME"),
		IMAPPassword: v.GetString("IMAP_PASSWORD"),
		IMAPTLS:      v.GetBool("IMAP_TLS"),

		CredentialBackend: strings.ToLower(v.GetString("CREDENTIAL_BACKEND")),
		KeyringDir:        v.GetString("KEYRING_DIR"),

		Transactions: SourceConfig{
			From:       v.GetString("TRANSACTIONS_QUERY_FROM"),
			Subject:    v.GetString("TRANSACTIONS_QUERY_SUBJECT"),
			MaxResults: v.GetInt64("TRANSACTIONS_MAX_RESULTS"),
		},
		Bookings: SourceConfig{
			From:       v.GetString("BOOKINGS_QUERY_FROM"),
			Subject:    v.GetString("BOOKINGS_QUERY_SUBJECT"),
			MaxResults: v.GetInt64("BOOKINGS_MAX_RESULTS"),
		},
		SyncInterval:     time.Duration(v.GetInt("SYNC_INTERVAL")) * time.Second,
		PropertyTimezone: v.GetString("PROPERTY_TIMEZONE"),
		PropertyName:     v.GetString("PROPERTY_NAME"),

		WhatsAppAPIURL:        v.GetString("WHATSAPP_API_URL"),
		WhatsAppPhoneNumberID: v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppAccessToken:   v.GetString("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppTemplate:      v.GetString("WHATSAPP_TEMPLATE"),
		WhatsAppUseTemplate:   v.GetBool("WHATSAPP_USE_TEMPLATE"),
		WhatsAppLanguage:      v.GetString("WHATSAPP_LANGUAGE"),
		ReminderDelay:         time.Duration(v.GetInt("REMINDER_DELAY_MS")) * time.Millisecond,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")
	v.SetDefault("READ_TIMEOUT", 30)
	v.SetDefault("WRITE_TIMEOUT", 60)

	v.SetDefault("MONGODB_DSN", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "hostel")

	v.SetDefault("GMAIL_REDIRECT_URL", "http://localhost:8080/api/gmail/callback")

	v.SetDefault("MAIL_SOURCE", MailSourceGmail)
	v.SetDefault("IMAP_PORT", "993")
	v.SetDefault("IMAP_TLS", true)

	v.SetDefault("CREDENTIAL_BACKEND", CredentialBackendMongo)
	v.SetDefault("KEYRING_DIR", "~/.config/hostel-sync/credentials")

	v.SetDefault("TRANSACTIONS_QUERY_FROM", "info@sbmbank.co.in")
	v.SetDefault("TRANSACTIONS_QUERY_SUBJECT", "Credit Transaction Alert")
	v.SetDefault("TRANSACTIONS_MAX_RESULTS", 5)
	v.SetDefault("BOOKINGS_QUERY_FROM", "no-reply@go-mmt.com")
	v.SetDefault("BOOKINGS_QUERY_SUBJECT", "New Booking Received")
	v.SetDefault("BOOKINGS_MAX_RESULTS", 50)
	v.SetDefault("SYNC_INTERVAL", 0)
	v.SetDefault("PROPERTY_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("PROPERTY_NAME", "Pathfinders Nest")

	v.SetDefault("WHATSAPP_API_URL", "https://graph.facebook.com/v21.0")
	v.SetDefault("WHATSAPP_TEMPLATE", "advance_payment_reminder")
	v.SetDefault("WHATSAPP_USE_TEMPLATE", true)
	v.SetDefault("WHATSAPP_LANGUAGE", "en")
	v.SetDefault("REMINDER_DELAY_MS", 1000)
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.MailSource {
	case MailSourceGmail, MailSourceIMAP:
	default:
		return fmt.Errorf("unsupported MAIL_SOURCE %q", c.MailSource)
	}

	switch c.CredentialBackend {
	case CredentialBackendMongo, CredentialBackendKeyring:
	default:
		return fmt.Errorf("unsupported CREDENTIAL_BACKEND %q", c.CredentialBackend)
	}

	if c.Transactions.MaxResults <= 0 || c.Bookings.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive")
	}

	return nil
}

// ReminderTemplate is the template name to send, or "" for plain text
func (c *Config) ReminderTemplate() string {
	if !c.WhatsAppUseTemplate {
		return ""
	}
	return c.WhatsAppTemplate
}

// Location resolves PropertyTimezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.PropertyTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
