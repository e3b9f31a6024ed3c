package orders

import (
	"strings"
	"testing"
	"time"
)

func sampleOrder() *Order {
	return &Order{
		CustomerName:   "Amahoro",
		PickupAddress:  "KG 11 Ave, Kigali",
		PickupDateTime: "2024-05-01T10:00:00Z",
		Items: []Item{
			{Name: "Shirts", Quantity: 2},
			{Name: "Bedding", Quantity: 1},
		},
		CustomerNotes: "gate code 4411",
	}
}

func TestFormatPickupOrderMessage(t *testing.T) {
	composed := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	out, err := FormatPickupOrderMessage(sampleOrder(), composed)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	for _, want := range []string{
		"Amahoro",
		"KG 11 Ave, Kigali",
		"- 2 x Shirts",
		"- 1 x Bedding",
		"Notes: gate code 4411",
		"May",
		"2024",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Count(out, "Shirts") != 1 || strings.Count(out, "Bedding") != 1 {
		t.Errorf("each item must appear exactly once:\n%s", out)
	}
	if strings.Index(out, "Shirts") > strings.Index(out, "Bedding") {
		t.Errorf("items must render in input order:\n%s", out)
	}
	if len(out) > 4096 {
		t.Errorf("output exceeds transport ceiling: %d", len(out))
	}
}

func TestFormatPickupOrderMessageUnparseableTimeEchoed(t *testing.T) {
	order := sampleOrder()
	order.PickupDateTime = "not-a-date"
	out, err := FormatPickupOrderMessage(order, time.Now())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(out, "not-a-date") {
		t.Fatalf("expected raw time echoed:\n%s", out)
	}
}

func TestFormatPickupOrderMessageAbsentTimePlaceholder(t *testing.T) {
	order := sampleOrder()
	order.PickupDateTime = ""
	out, err := FormatPickupOrderMessage(order, time.Now())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(out, "Not specified") {
		t.Fatalf("expected placeholder for absent time:\n%s", out)
	}
}

func TestFormatPickupOrderMessageNotesOmittedWhenEmpty(t *testing.T) {
	order := sampleOrder()
	order.CustomerNotes = ""
	out, err := FormatPickupOrderMessage(order, time.Now())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if strings.Contains(out, "Notes:") {
		t.Fatalf("notes block must be omitted when empty:\n%s", out)
	}
}

func TestFormatPickupOrderMessageIdempotent(t *testing.T) {
	composed := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	first, err := FormatPickupOrderMessage(sampleOrder(), composed)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	second, err := FormatPickupOrderMessage(sampleOrder(), composed)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if first != second {
		t.Fatal("identical input must render identically")
	}
}

func TestFormatCustomerConfirmationMessage(t *testing.T) {
	out, err := FormatCustomerConfirmationMessage("Amahoro", "2024-05-01T10:00:00Z")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	for _, want := range []string{"Amahoro", "May", "2024"} {
		if !strings.Contains(out, want) {
			t.Errorf("confirmation missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCustomerConfirmationMessageAbsentTime(t *testing.T) {
	out, err := FormatCustomerConfirmationMessage("Amahoro", "")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(out, "your preferred time") {
		t.Fatalf("expected placeholder, got:\n%s", out)
	}
}
