// Package tests exercises the complete order intake flow end to end: chi
// router, intake handler and gateway, with a scripted provider underneath.
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleanhub/laundry-orders/internal/api/router"
	"github.com/kleanhub/laundry-orders/internal/messaging"
	"github.com/kleanhub/laundry-orders/internal/orders"
	"github.com/kleanhub/laundry-orders/pkg/logging"
)

type sentMessage struct {
	To   string
	Body string
}

// scriptedProvider returns the queued outcomes in order and records every
// attempted send.
type scriptedProvider struct {
	outcomes []func() (string, error)
	sent     []sentMessage
}

func (p *scriptedProvider) Send(_ context.Context, _, to, body string) (string, error) {
	p.sent = append(p.sent, sentMessage{To: to, Body: body})
	if len(p.outcomes) == 0 {
		return "msg-default", nil
	}
	next := p.outcomes[0]
	p.outcomes = p.outcomes[1:]
	return next()
}

func ok(id string) func() (string, error) {
	return func() (string, error) { return id, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

type apiResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId"`
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}

func newStack(provider *scriptedProvider) http.Handler {
	logger := logging.New("error")
	gateway := messaging.NewGateway(provider, messaging.ProviderPindo, "KleanHub", logger)
	handler := orders.NewHandler(gateway, "250788123456", "250", logger)
	return router.New(&router.Config{
		Logger:        logger,
		OrdersHandler: handler,
	})
}

func postPickup(t *testing.T, stack http.Handler, body map[string]any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/pickup", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	stack.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func validOrder() map[string]any {
	return map[string]any{
		"customerName":  "Amahoro",
		"pickupAddress": "KG 11 Ave, Kigali",
		"items":         []map[string]any{{"name": "Shirts", "quantity": 2}},
	}
}

func TestPickupOrderAccepted(t *testing.T) {
	provider := &scriptedProvider{outcomes: []func() (string, error){ok("msg-42")}}
	stack := newStack(provider)

	rec, resp := postPickup(t, stack, validOrder())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "msg-42", resp.MessageID)
	assert.Contains(t, resp.Message, "Order received")

	require.Len(t, provider.sent, 1)
	assert.Equal(t, "250788123456", provider.sent[0].To)
	assert.Contains(t, provider.sent[0].Body, "- 2 x Shirts")
	assert.Contains(t, provider.sent[0].Body, "Amahoro")
	assert.Contains(t, provider.sent[0].Body, "KG 11 Ave, Kigali")
}

func TestPickupOrderEmptyItemsRejected(t *testing.T) {
	provider := &scriptedProvider{}
	stack := newStack(provider)

	body := validOrder()
	body["items"] = []map[string]any{}
	rec, resp := postPickup(t, stack, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "At least one item")
	assert.Empty(t, provider.sent, "no provider call on validation failure")
}

func TestPickupOrderStringQuantityCoerced(t *testing.T) {
	provider := &scriptedProvider{outcomes: []func() (string, error){ok("msg-7")}}
	stack := newStack(provider)

	body := validOrder()
	body["items"] = []map[string]any{{"name": "Bedsheets", "quantity": "3"}}
	rec, resp := postPickup(t, stack, body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	require.Len(t, provider.sent, 1)
	assert.Contains(t, provider.sent[0].Body, "- 3 x Bedsheets")
}

func TestPickupOrderOperatorSendFailure(t *testing.T) {
	perr := &messaging.ProviderError{
		Provider: messaging.ProviderPindo,
		Status:   500,
		Message:  "internal pindo fault",
	}
	provider := &scriptedProvider{outcomes: []func() (string, error){fail(perr)}}
	stack := newStack(provider)

	rec, resp := postPickup(t, stack, validOrder())

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID, "failure response must carry the correlation id")
	assert.Contains(t, resp.Error, resp.OrderID)
	assert.Contains(t, resp.Error, "support")
	assert.NotContains(t, resp.Error, "pindo fault", "raw provider error must not leak")
}

func TestPickupOrderCustomerConfirmationFailureIgnored(t *testing.T) {
	perr := &messaging.ProviderError{
		Provider: messaging.ProviderPindo,
		Status:   400,
		Message:  "invalid destination",
	}
	provider := &scriptedProvider{outcomes: []func() (string, error){ok("msg-1"), fail(perr)}}
	stack := newStack(provider)

	body := validOrder()
	body["customerPhone"] = "0792875310"
	rec, resp := postPickup(t, stack, body)

	require.Equal(t, http.StatusOK, rec.Code, "confirmation failure must not flip the outcome")
	assert.True(t, resp.Success)
	assert.Equal(t, "msg-1", resp.MessageID)

	require.Len(t, provider.sent, 2)
	assert.Equal(t, "250792875310", provider.sent[1].To, "trunk zero replaced by the country code")
	assert.Contains(t, provider.sent[1].Body, "Hello Amahoro")
}

func TestPickupOrderAllowedListRetry(t *testing.T) {
	perr := &messaging.ProviderError{
		Provider: messaging.ProviderPindo,
		Status:   403,
		Code:     "recipient_not_allowed",
		Message:  "recipient not in the allowed list",
	}
	provider := &scriptedProvider{outcomes: []func() (string, error){fail(perr), ok("msg-2")}}
	stack := newStack(provider)

	rec, resp := postPickup(t, stack, validOrder())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "msg-2", resp.MessageID)
	require.Len(t, provider.sent, 2)
	assert.Equal(t, "250788123456", provider.sent[0].To)
	assert.Equal(t, "+250788123456", provider.sent[1].To)
}

func TestPickupOrderMethodNotAllowed(t *testing.T) {
	stack := newStack(&scriptedProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/pickup", nil)
	rec := httptest.NewRecorder()
	stack.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	stack := newStack(&scriptedProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	stack.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
