package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SMS provider selection values. "pindo" targets the generic message-platform
// webhook API, "twilio" targets the account-scoped Twilio REST API.
const (
	SMSProviderPindo  = "pindo"
	SMSProviderTwilio = "twilio"
)

// Email provider selection values.
const (
	EmailProviderNone     = ""
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Order intake
	DefaultCountryCode string
	BusinessPhone      string

	// SMS delivery
	SMSProvider      string
	PindoAPIToken    string
	PindoSenderID    string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Optional operator email copy of each order
	EmailProvider     string
	OperatorEmail     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// AWS (only needed when EmailProvider is "ses")
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
		BodyLimitBytes:     int64(getEnvAsInt("BODY_LIMIT_BYTES", 64*1024)),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "250"),
		BusinessPhone:      getEnv("BUSINESS_PHONE", ""),

		SMSProvider:      strings.ToLower(strings.TrimSpace(getEnv("SMS_PROVIDER", SMSProviderPindo))),
		PindoAPIToken:    getEnv("PINDO_API_TOKEN", ""),
		PindoSenderID:    getEnv("PINDO_SENDER_ID", "PindoTest"),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		OperatorEmail:     getEnv("OPERATOR_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "KleanHub Laundry"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "KleanHub Laundry"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// Validate reports every missing required variable by name so a
// misconfigured deployment fails with the complete list at startup.
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.BusinessPhone) == "" {
		missing = append(missing, "BUSINESS_PHONE")
	}

	switch c.SMSProvider {
	case SMSProviderPindo:
		if c.PindoAPIToken == "" {
			missing = append(missing, "PINDO_API_TOKEN")
		}
	case SMSProviderTwilio:
		if c.TwilioAccountSID == "" {
			missing = append(missing, "TWILIO_ACCOUNT_SID")
		}
		if c.TwilioAuthToken == "" {
			missing = append(missing, "TWILIO_AUTH_TOKEN")
		}
		if c.TwilioFromNumber == "" {
			missing = append(missing, "TWILIO_FROM_NUMBER")
		}
	default:
		return fmt.Errorf("config: unknown SMS_PROVIDER %q (want %q or %q)", c.SMSProvider, SMSProviderPindo, SMSProviderTwilio)
	}

	switch c.EmailProvider {
	case EmailProviderNone:
	case EmailProviderSendGrid:
		if c.SendGridAPIKey == "" {
			missing = append(missing, "SENDGRID_API_KEY")
		}
		if c.SendGridFromEmail == "" {
			missing = append(missing, "SENDGRID_FROM_EMAIL")
		}
		if c.OperatorEmail == "" {
			missing = append(missing, "OPERATOR_EMAIL")
		}
	case EmailProviderSES:
		if c.SESFromEmail == "" {
			missing = append(missing, "SES_FROM_EMAIL")
		}
		if c.OperatorEmail == "" {
			missing = append(missing, "OPERATOR_EMAIL")
		}
	default:
		return fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
