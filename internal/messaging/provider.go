package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleanhub/laundry-orders/pkg/logging"
)

const (
	// ProviderPindo sends through the Pindo message-platform webhook API.
	ProviderPindo = "pindo"
	// ProviderTwilio sends through the account-scoped Twilio REST API.
	ProviderTwilio = "twilio"
)

// Provider is the single outbound integration the gateway wraps. Send
// delivers one text message and returns the provider-assigned message id.
type Provider interface {
	Send(ctx context.Context, from, to, body string) (id string, err error)
}

// ProviderConfig captures the credentials required to build an outbound sender.
type ProviderConfig struct {
	Provider         string
	PindoAPIToken    string
	PindoSenderID    string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// BuildProvider instantiates the configured provider. It returns the
// provider, its name, its default sending identity, and an error naming
// every missing credential when the provider cannot be built.
func BuildProvider(cfg ProviderConfig, logger *logging.Logger) (Provider, string, string, error) {
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderPindo
	}

	switch name {
	case ProviderPindo:
		var missing []string
		if cfg.PindoAPIToken == "" {
			missing = append(missing, "PINDO_API_TOKEN")
		}
		if len(missing) > 0 {
			return nil, "", "", fmt.Errorf("messaging: pindo not configured: %s missing", strings.Join(missing, ", "))
		}
		return NewPindoSender(cfg.PindoAPIToken, cfg.PindoSenderID, logger), ProviderPindo, cfg.PindoSenderID, nil
	case ProviderTwilio:
		var missing []string
		if cfg.TwilioAccountSID == "" {
			missing = append(missing, "TWILIO_ACCOUNT_SID")
		}
		if cfg.TwilioAuthToken == "" {
			missing = append(missing, "TWILIO_AUTH_TOKEN")
		}
		if cfg.TwilioFromNumber == "" {
			missing = append(missing, "TWILIO_FROM_NUMBER")
		}
		if len(missing) > 0 {
			return nil, "", "", fmt.Errorf("messaging: twilio not configured: %s missing", strings.Join(missing, ", "))
		}
		return NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger), ProviderTwilio, cfg.TwilioFromNumber, nil
	default:
		return nil, "", "", fmt.Errorf("messaging: unknown provider %q", cfg.Provider)
	}
}
