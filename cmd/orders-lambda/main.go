package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	appconfig "github.com/kleanhub/laundry-orders/internal/config"
	"github.com/kleanhub/laundry-orders/internal/messaging"
	"github.com/kleanhub/laundry-orders/internal/orders"
	"github.com/kleanhub/laundry-orders/pkg/logging"
)

// orders-lambda adapts API Gateway V2 events onto the same pickup order
// handler the HTTP server uses, so both deployments share one code path.
func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	businessPhone, err := messaging.NormalizePhone(cfg.BusinessPhone, cfg.DefaultCountryCode)
	if err != nil {
		logger.Error("BUSINESS_PHONE is not a valid phone number", "error", err)
		os.Exit(1)
	}

	provider, providerName, from, err := messaging.BuildProvider(messaging.ProviderConfig{
		Provider:         cfg.SMSProvider,
		PindoAPIToken:    cfg.PindoAPIToken,
		PindoSenderID:    cfg.PindoSenderID,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
	}, logger)
	if err != nil {
		logger.Error("failed to build messaging provider", "error", err)
		os.Exit(1)
	}

	gateway := messaging.NewGateway(provider, providerName, from, logger)
	handler := orders.NewHandler(gateway, businessPhone, cfg.DefaultCountryCode, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, handler, evt)
	})
}

func handle(ctx context.Context, handler *orders.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}

	if path != "/api/orders/pickup" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	if ct := headerValue(evt.Headers, "content-type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	rw := newResponseCapture()
	handler.CreatePickupOrder(rw, req)

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: rw.status,
		Body:       rw.buf.String(),
		Headers:    map[string]string{},
	}
	if ct := rw.header.Get("Content-Type"); ct != "" {
		out.Headers["content-type"] = ct
	}
	return out, nil
}

// responseCapture is a minimal http.ResponseWriter backed by a buffer so the
// handler's response can be repackaged as a Lambda proxy response.
type responseCapture struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newResponseCapture() *responseCapture {
	return &responseCapture{header: http.Header{}, status: http.StatusOK}
}

func (r *responseCapture) Header() http.Header { return r.header }

func (r *responseCapture) WriteHeader(status int) { r.status = status }

func (r *responseCapture) Write(p []byte) (int, error) { return r.buf.Write(p) }

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
