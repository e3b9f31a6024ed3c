package messaging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kleanhub/laundry-orders/internal/observability/metrics"
	"github.com/kleanhub/laundry-orders/pkg/logging"
)

// MaxMessageLength is the transport ceiling for a single outbound message.
const MaxMessageLength = 4096

const defaultSendTimeout = 30 * time.Second

// Result is the value every send operation returns. Errors never propagate
// past the gateway as Go errors; callers branch on Success.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Gateway delivers formatted messages through one configured provider,
// translating provider faults into human-readable Result errors.
type Gateway struct {
	provider         Provider
	providerName     string
	from             string
	timeout          time.Duration
	allowedListRetry bool
	metrics          *metrics.MessagingMetrics
	logger           *logging.Logger
}

// GatewayOption customizes gateway construction.
type GatewayOption func(*Gateway)

// WithSendTimeout overrides the 30 second send deadline.
func WithSendTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithMetrics attaches send counters/latency observation.
func WithMetrics(m *metrics.MessagingMetrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithAllowedListRetry toggles the plus-prefixed corrective retry. It is on
// by default for the webhook-style Pindo path and off for Twilio, whose
// destinations are already sent in canonical digit form.
func WithAllowedListRetry(enabled bool) GatewayOption {
	return func(g *Gateway) { g.allowedListRetry = enabled }
}

// NewGateway wraps a provider with precondition checks, a bounded send
// deadline and error translation.
func NewGateway(provider Provider, providerName, from string, logger *logging.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	g := &Gateway{
		provider:         provider,
		providerName:     providerName,
		from:             from,
		timeout:          defaultSendTimeout,
		allowedListRetry: providerName == ProviderPindo,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Send delivers body to destination. The returned Result always carries
// either a provider message id or a human-readable error.
func (g *Gateway) Send(ctx context.Context, destination, body string) Result {
	if strings.TrimSpace(destination) == "" {
		return g.fail("destination phone number is required")
	}
	if strings.TrimSpace(body) == "" {
		return g.fail("message body is required")
	}
	if len(body) > MaxMessageLength {
		return g.fail(fmt.Sprintf("message body exceeds %d characters", MaxMessageLength))
	}

	canonical, ok := canonicalDestination(destination)
	if !ok {
		return g.fail("Invalid phone number format")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	id, err := g.provider.Send(ctx, g.from, canonical, body)
	g.observeLatency(start)
	if err != nil {
		var perr *ProviderError
		if g.allowedListRetry && errors.As(err, &perr) && perr.IsRecipientNotAllowed() {
			return g.retryWithPlus(ctx, canonical, body, err)
		}
		g.logger.Error("sms send failed", "provider", g.providerName, "to", canonical, "error", err)
		return g.fail(g.translate(err))
	}
	if id == "" {
		g.logger.Error("sms send returned no message id", "provider", g.providerName, "to", canonical)
		return g.fail("invalid response (missing message id)")
	}

	g.observeSend("success")
	return Result{Success: true, MessageID: id}
}

// retryWithPlus makes the single corrective attempt with a plus-prefixed
// destination after an allowed-list rejection. Both failures collapse into
// one actionable error.
func (g *Gateway) retryWithPlus(ctx context.Context, canonical, body string, firstErr error) Result {
	prefixed := "+" + canonical
	g.logger.Warn("recipient not in allowed list; retrying with plus prefix",
		"provider", g.providerName,
		"to", canonical,
		"error", firstErr,
	)
	id, err := g.provider.Send(ctx, g.from, prefixed, body)
	if err != nil {
		g.logger.Error("corrective retry failed", "provider", g.providerName, "to", prefixed, "error", err)
		return g.fail(fmt.Sprintf(
			"recipient is not on the provider's allowed list (tried %q and %q); add the number to the allowed list or verify it in the provider console, then resubmit the order",
			canonical, prefixed,
		))
	}
	if id == "" {
		return g.fail("invalid response (missing message id)")
	}
	g.observeSend("success")
	return Result{Success: true, MessageID: id}
}

func (g *Gateway) translate(err error) string {
	if isTimeout(err) {
		return fmt.Sprintf("message send timed out; the provider did not respond within %s", g.timeout)
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		switch {
		case perr.IsAuthFailure():
			return "messaging provider rejected our credentials; check the API token configuration"
		case perr.IsRecipientNotAllowed():
			return fmt.Sprintf("recipient is not on the provider's allowed list: %s", perr.Message)
		case perr.IsInvalidRequest():
			return fmt.Sprintf("messaging provider rejected the request: %s", perr.Message)
		}
		return perr.Error()
	}
	return err.Error()
}

func (g *Gateway) fail(msg string) Result {
	g.observeSend("failure")
	return Result{Success: false, Error: msg}
}

func (g *Gateway) observeSend(status string) {
	if g.metrics != nil {
		g.metrics.ObserveSend(g.providerName, status)
	}
}

func (g *Gateway) observeLatency(start time.Time) {
	if g.metrics != nil {
		g.metrics.ObserveSendLatency(g.providerName, time.Since(start).Seconds())
	}
}

var channelPrefixes = []string{"whatsapp:", "tel:", "sms:"}

// canonicalDestination strips channel prefixes and the leading plus, then
// requires a 10 to 15 digit string.
func canonicalDestination(destination string) (string, bool) {
	d := strings.TrimSpace(destination)
	for _, prefix := range channelPrefixes {
		if len(d) >= len(prefix) && strings.EqualFold(d[:len(prefix)], prefix) {
			d = d[len(prefix):]
			break
		}
	}
	d = strings.TrimPrefix(d, "+")
	if !isDigits(d) || len(d) < 10 || len(d) > 15 {
		return "", false
	}
	return d, true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
