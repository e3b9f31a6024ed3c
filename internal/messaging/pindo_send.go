package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kleanhub/laundry-orders/pkg/logging"
)

var pindoSendTracer = otel.Tracer("laundry.internal.messaging.pindo_send")

const pindoEndpoint = "https://api.pindo.io/v1/sms/"

// PindoSender posts SMS messages through Pindo's webhook-style JSON API.
type PindoSender struct {
	apiToken   string
	senderID   string
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewPindoSender builds a sender for the Pindo V1 API.
func NewPindoSender(apiToken, senderID string, logger *logging.Logger) *PindoSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &PindoSender{
		apiToken: apiToken,
		senderID: senderID,
		endpoint: pindoEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

var _ Provider = (*PindoSender)(nil)

// Send dispatches a single SMS. The caller owns timeout and retry policy;
// this client makes exactly one attempt.
func (s *PindoSender) Send(ctx context.Context, from, to, body string) (string, error) {
	if s.apiToken == "" {
		return "", errors.New("messaging: pindo api token missing")
	}
	if to == "" {
		return "", errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("messaging: body required")
	}
	if from == "" {
		from = s.senderID
	}

	ctx, span := pindoSendTracer.Start(ctx, "messaging.pindo.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("laundry.to", to),
		attribute.String("laundry.sender", from),
	)

	payload, err := json.Marshal(map[string]string{
		"to":     to,
		"text":   body,
		"sender": from,
	})
	if err != nil {
		return "", fmt.Errorf("messaging: failed to marshal pindo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := parsePindoError(resp.StatusCode, respBody)
		span.RecordError(perr)
		return "", perr
	}

	var parsed struct {
		SMSID  string `json:"sms_id"`
		Status string `json:"status"`
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			s.logger.Warn("pindo response not parseable", "error", err)
		}
	}
	s.logger.Info("pindo sms sent", "to", to, "sender", from, "sms_id", parsed.SMSID)
	return parsed.SMSID, nil
}

func parsePindoError(status int, body []byte) *ProviderError {
	perr := &ProviderError{Provider: ProviderPindo, Status: status}
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		perr.Code = parsed.Code
		perr.Message = parsed.Message
		if perr.Message == "" {
			perr.Message = parsed.Error
		}
	}
	if perr.Message == "" {
		perr.Message = strings.TrimSpace(string(body))
	}
	return perr
}
