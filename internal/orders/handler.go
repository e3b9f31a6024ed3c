package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kleanhub/laundry-orders/internal/messaging"
	"github.com/kleanhub/laundry-orders/internal/observability/metrics"
	"github.com/kleanhub/laundry-orders/pkg/logging"
)

// Sender delivers a formatted message and reports the outcome as a value.
type Sender interface {
	Send(ctx context.Context, destination, body string) messaging.Result
}

// Notifier receives a best-effort copy of each accepted order (email).
type Notifier interface {
	NotifyNewOrder(ctx context.Context, orderID, summary string) error
}

// Handler handles HTTP requests for pickup orders
type Handler struct {
	gateway       Sender
	businessPhone string
	countryCode   string
	notifier      Notifier
	metrics       *metrics.OrderMetrics
	logger        *logging.Logger
}

// HandlerOption customizes handler construction.
type HandlerOption func(*Handler)

// WithNotifier attaches the optional operator email copy.
func WithNotifier(n Notifier) HandlerOption {
	return func(h *Handler) { h.notifier = n }
}

// WithOrderMetrics attaches intake outcome counters.
func WithOrderMetrics(m *metrics.OrderMetrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates a new pickup order handler. businessPhone is the
// operator destination, already normalized at startup; it may be empty when
// the deployment is misconfigured, which every request then reports as a
// server error naming the setting.
func NewHandler(gateway Sender, businessPhone, countryCode string, logger *logging.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if countryCode == "" {
		countryCode = "250"
	}
	h := &Handler{
		gateway:       gateway,
		businessPhone: businessPhone,
		countryCode:   countryCode,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type orderResponse struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CreatePickupOrder handles POST /api/orders/pickup.
func (h *Handler) CreatePickupOrder(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in pickup order handler", "panic", rec)
			h.observe("panic")
			writeJSON(w, http.StatusInternalServerError, orderResponse{
				Error: "Internal server error",
			})
		}
	}()

	if r.Method != http.MethodPost {
		h.observe("method_not_allowed")
		writeJSON(w, http.StatusMethodNotAllowed, orderResponse{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read request body", "error", err)
		h.observe("bad_request")
		writeJSON(w, http.StatusBadRequest, orderResponse{Error: "could not read request body"})
		return
	}

	req, err := decodeOrder(body)
	if err != nil {
		h.observe("bad_request")
		writeJSON(w, http.StatusBadRequest, orderResponse{Error: err.Error()})
		return
	}

	order, err := req.Validate()
	if err != nil {
		h.observe("validation_failed")
		writeJSON(w, http.StatusBadRequest, orderResponse{Error: err.Error()})
		return
	}

	// The correlation id exists before any external call so partial
	// failures are still traceable.
	orderID := NewOrderID()

	if h.businessPhone == "" {
		h.logger.Error("business destination not configured", "order_id", orderID)
		h.observe("misconfigured")
		writeJSON(w, http.StatusInternalServerError, orderResponse{
			OrderID: orderID,
			Error:   "server misconfiguration: BUSINESS_PHONE is not set",
		})
		return
	}

	message, err := FormatPickupOrderMessage(order, time.Now())
	if err != nil {
		h.logger.Error("failed to format order message", "order_id", orderID, "error", err)
		h.observe("format_failed")
		writeJSON(w, http.StatusInternalServerError, orderResponse{
			OrderID: orderID,
			Error:   "Internal server error",
		})
		return
	}

	// Critical path: the operator notification gates the HTTP outcome.
	result := h.gateway.Send(r.Context(), h.businessPhone, message)
	if !result.Success {
		h.logger.Error("operator notification failed",
			"order_id", orderID,
			"error", result.Error,
		)
		h.observe("notify_failed")
		writeJSON(w, http.StatusInternalServerError, orderResponse{
			OrderID: orderID,
			Error:   "We could not process your order right now. Please try again shortly, or contact support quoting order " + orderID + ".",
		})
		return
	}

	h.sendCustomerConfirmation(r.Context(), order, orderID)
	h.emailOrderCopy(r.Context(), orderID, message)

	h.observe("accepted")
	h.logger.Info("pickup order accepted",
		"order_id", orderID,
		"message_id", result.MessageID,
		"items", len(order.Items),
	)
	writeJSON(w, http.StatusOK, orderResponse{
		Success:   true,
		OrderID:   orderID,
		MessageID: result.MessageID,
		Message:   "Order received. We will contact you shortly to confirm the pickup.",
	})
}

// sendCustomerConfirmation is best-effort: a failure is logged and never
// changes the already-determined success outcome.
func (h *Handler) sendCustomerConfirmation(ctx context.Context, order *Order, orderID string) {
	if order.CustomerPhone == "" {
		return
	}
	phone, err := messaging.NormalizePhone(order.CustomerPhone, h.countryCode)
	if err != nil {
		h.logger.Warn("skipping customer confirmation: invalid phone",
			"order_id", orderID,
			"error", err,
		)
		return
	}
	confirmation, err := FormatCustomerConfirmationMessage(order.CustomerName, order.PickupDateTime)
	if err != nil {
		h.logger.Warn("skipping customer confirmation: format failed", "order_id", orderID, "error", err)
		return
	}
	if result := h.gateway.Send(ctx, phone, confirmation); !result.Success {
		h.logger.Warn("customer confirmation failed",
			"order_id", orderID,
			"error", result.Error,
		)
	}
}

// emailOrderCopy mirrors the operator SMS over email when configured.
func (h *Handler) emailOrderCopy(ctx context.Context, orderID, summary string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifyNewOrder(ctx, orderID, summary); err != nil {
		h.logger.Warn("operator email copy failed", "order_id", orderID, "error", err)
	}
}

func (h *Handler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveOrder(outcome)
	}
}

// decodeOrder accepts either a JSON object or a JSON string wrapping one,
// the shape serverless gateways hand over when the body arrives
// pre-stringified.
func decodeOrder(data []byte) (*PickupOrderRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("request body is required")
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, errors.New("invalid JSON body")
		}
		data = bytes.TrimSpace([]byte(inner))
		if len(data) == 0 {
			return nil, errors.New("request body is required")
		}
	}
	if data[0] != '{' {
		return nil, errors.New("request body must be a JSON object")
	}
	var req PickupOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
