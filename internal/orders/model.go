package orders

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PickupOrderRequest is the wire shape of a pickup order submission. It is
// ephemeral: nothing here is ever persisted.
type PickupOrderRequest struct {
	CustomerName   string           `json:"customerName"`
	PickupAddress  string           `json:"pickupAddress"`
	PickupDateTime string           `json:"pickupDateTime,omitempty"`
	Items          []OrderItemInput `json:"items"`
	CustomerNotes  string           `json:"customerNotes,omitempty"`
	CustomerPhone  string           `json:"customerPhone,omitempty"`
}

// OrderItemInput keeps quantity raw so numeric strings coming from the web
// form ("2") coerce during validation with a field-qualified error instead
// of failing the whole JSON decode.
type OrderItemInput struct {
	Name     string          `json:"name"`
	Quantity json.RawMessage `json:"quantity,omitempty"`
}

// Order is a validated, trimmed pickup order.
type Order struct {
	CustomerName   string
	PickupAddress  string
	PickupDateTime string
	Items          []Item
	CustomerNotes  string
	CustomerPhone  string
}

// Item is a validated order line.
type Item struct {
	Name     string
	Quantity int
}

// FieldError reports a schema violation. Message is already qualified with
// the offending field path and safe to show to the client.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Validate checks the submission and returns the trimmed order. The first
// violation wins.
func (r *PickupOrderRequest) Validate() (*Order, error) {
	name := strings.TrimSpace(r.CustomerName)
	if name == "" {
		return nil, &FieldError{Field: "customerName", Message: "customerName is required"}
	}
	address := strings.TrimSpace(r.PickupAddress)
	if address == "" {
		return nil, &FieldError{Field: "pickupAddress", Message: "pickupAddress is required"}
	}
	if len(r.Items) == 0 {
		return nil, &FieldError{Field: "items", Message: "At least one item is required"}
	}

	items := make([]Item, 0, len(r.Items))
	for i, in := range r.Items {
		itemName := strings.TrimSpace(in.Name)
		if itemName == "" {
			return nil, &FieldError{
				Field:   fmt.Sprintf("items[%d].name", i),
				Message: fmt.Sprintf("items[%d].name is required", i),
			}
		}
		qty, ok := parseQuantity(in.Quantity)
		if !ok {
			return nil, &FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("items[%d].quantity must be a positive integer", i),
			}
		}
		items = append(items, Item{Name: itemName, Quantity: qty})
	}

	return &Order{
		CustomerName:   name,
		PickupAddress:  address,
		PickupDateTime: strings.TrimSpace(r.PickupDateTime),
		Items:          items,
		CustomerNotes:  strings.TrimSpace(r.CustomerNotes),
		CustomerPhone:  strings.TrimSpace(r.CustomerPhone),
	}, nil
}

func parseQuantity(raw json.RawMessage) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
