package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/kleanhub/laundry-orders/internal/messaging/templates"
)

// Placeholders rendered when the customer left the pickup time blank.
const (
	pickupTimeNotSpecified  = "Not specified"
	confirmationDefaultTime = "your preferred time"
)

const pickupOrderTemplate = `New pickup order

Customer: {{.CustomerName}}
Pickup address: {{.PickupAddress}}
Pickup time: {{.PickupTime}}

Items:
{{.Items}}
{{if .Notes}}Notes: {{.Notes}}

{{end}}Received: {{.ComposedAt}}`

const confirmationTemplate = `Hello {{.CustomerName}}, your laundry pickup is confirmed for {{.PickupTime}}. Our rider will collect your items then. Thank you for choosing KleanHub!`

var renderer = templates.Renderer{}

// FormatPickupOrderMessage renders the operator notification for one order.
// The output is not truncated here; the gateway enforces the transport
// ceiling so oversized content fails loudly instead of being cut silently.
func FormatPickupOrderMessage(order *Order, composedAt time.Time) (string, error) {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("- %d x %s", item.Quantity, item.Name))
	}

	return renderer.Render("pickup_order", pickupOrderTemplate, map[string]string{
		"CustomerName":  order.CustomerName,
		"PickupAddress": order.PickupAddress,
		"PickupTime":    formatPickupTime(order.PickupDateTime, pickupTimeNotSpecified),
		"Items":         strings.Join(lines, "\n"),
		"Notes":         order.CustomerNotes,
		"ComposedAt":    composedAt.UTC().Format("2006-01-02 15:04 MST"),
	})
}

// FormatCustomerConfirmationMessage renders the confirmation sent back to
// the customer after the operator was notified.
func FormatCustomerConfirmationMessage(customerName, pickupDateTime string) (string, error) {
	return renderer.Render("pickup_confirmation", confirmationTemplate, map[string]string{
		"CustomerName": customerName,
		"PickupTime":   formatPickupTime(pickupDateTime, confirmationDefaultTime),
	})
}

var pickupTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// formatPickupTime renders a parseable timestamp in a human-friendly form
// and echoes free text verbatim so customer input is never dropped.
func formatPickupTime(raw, placeholder string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return placeholder
	}
	for _, layout := range pickupTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Mon, 02 Jan 2006 15:04")
		}
	}
	return raw
}
