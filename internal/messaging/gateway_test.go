package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kleanhub/laundry-orders/pkg/logging"
)

type fakeProvider struct {
	calls   []string
	results []fakeResult
}

type fakeResult struct {
	id  string
	err error
}

func (f *fakeProvider) Send(_ context.Context, _, to, _ string) (string, error) {
	f.calls = append(f.calls, to)
	idx := len(f.calls) - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	r := f.results[idx]
	return r.id, r.err
}

func newTestGateway(p Provider, opts ...GatewayOption) *Gateway {
	return NewGateway(p, ProviderPindo, "KleanHub", logging.New("error"), opts...)
}

func TestGatewaySendSuccess(t *testing.T) {
	p := &fakeProvider{results: []fakeResult{{id: "msg-123"}}}
	g := newTestGateway(p)

	res := g.Send(context.Background(), "+250792875310", "hello")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.MessageID != "msg-123" {
		t.Fatalf("expected provider message id, got %q", res.MessageID)
	}
	if len(p.calls) != 1 || p.calls[0] != "250792875310" {
		t.Fatalf("expected one canonical-digit call, got %v", p.calls)
	}
}

func TestGatewayPreconditions(t *testing.T) {
	p := &fakeProvider{results: []fakeResult{{id: "x"}}}
	g := newTestGateway(p)
	ctx := context.Background()

	if res := g.Send(ctx, "", "body"); res.Success || !strings.Contains(res.Error, "destination") {
		t.Fatalf("expected destination error, got %+v", res)
	}
	if res := g.Send(ctx, "250792875310", "  "); res.Success || !strings.Contains(res.Error, "body") {
		t.Fatalf("expected body error, got %+v", res)
	}
	long := strings.Repeat("a", MaxMessageLength+1)
	if res := g.Send(ctx, "250792875310", long); res.Success || !strings.Contains(res.Error, "4096") {
		t.Fatalf("expected length error, got %+v", res)
	}
	if res := g.Send(ctx, "not-a-number", "body"); res.Success || res.Error != "Invalid phone number format" {
		t.Fatalf("expected invalid format error, got %+v", res)
	}
	if len(p.calls) != 0 {
		t.Fatalf("no provider call should happen on precondition failure, got %v", p.calls)
	}
}

func TestGatewayChannelPrefixStripped(t *testing.T) {
	p := &fakeProvider{results: []fakeResult{{id: "msg-1"}}}
	g := newTestGateway(p)

	res := g.Send(context.Background(), "whatsapp:+250792875310", "hello")
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if p.calls[0] != "250792875310" {
		t.Fatalf("expected prefix stripped, got %q", p.calls[0])
	}
}

func TestGatewayMissingMessageID(t *testing.T) {
	p := &fakeProvider{results: []fakeResult{{id: ""}}}
	g := newTestGateway(p)

	res := g.Send(context.Background(), "250792875310", "hello")
	if res.Success {
		t.Fatal("expected failure for missing message id")
	}
	if res.Error != "invalid response (missing message id)" {
		t.Fatalf("unexpected error %q", res.Error)
	}
}

func TestGatewayAllowedListRetrySucceeds(t *testing.T) {
	notAllowed := &ProviderError{Provider: ProviderPindo, Status: 403, Code: "recipient_not_allowed", Message: "recipient not in the allowed list"}
	p := &fakeProvider{results: []fakeResult{{err: notAllowed}, {id: "msg-2"}}}
	g := newTestGateway(p)

	res := g.Send(context.Background(), "250792875310", "hello")
	if !res.Success {
		t.Fatalf("expected retry success, got %q", res.Error)
	}
	if len(p.calls) != 2 {
		t.Fatalf("expected exactly two attempts, got %d", len(p.calls))
	}
	if p.calls[1] != "+250792875310" {
		t.Fatalf("expected plus-prefixed retry, got %q", p.calls[1])
	}
}

func TestGatewayAllowedListRetryConsolidatedError(t *testing.T) {
	notAllowed := &ProviderError{Provider: ProviderPindo, Status: 403, Message: "recipient not in the allowed list"}
	p := &fakeProvider{results: []fakeResult{{err: notAllowed}, {err: notAllowed}}}
	g := newTestGateway(p)

	res := g.Send(context.Background(), "250792875310", "hello")
	if res.Success {
		t.Fatal("expected failure after both attempts")
	}
	for _, want := range []string{`"250792875310"`, `"+250792875310"`, "allowed list"} {
		if !strings.Contains(res.Error, want) {
			t.Errorf("consolidated error missing %s: %q", want, res.Error)
		}
	}
	if len(p.calls) != 2 {
		t.Fatalf("expected exactly two attempts, got %d", len(p.calls))
	}
}

func TestGatewayNoRetryWhenDisabled(t *testing.T) {
	notAllowed := &ProviderError{Provider: ProviderTwilio, Status: 400, Code: "21608", Message: "number is unverified"}
	p := &fakeProvider{results: []fakeResult{{err: notAllowed}}}
	g := NewGateway(p, ProviderTwilio, "+15550001111", logging.New("error"))

	res := g.Send(context.Background(), "250792875310", "hello")
	if res.Success {
		t.Fatal("expected failure")
	}
	if len(p.calls) != 1 {
		t.Fatalf("expected single attempt with retry disabled, got %d", len(p.calls))
	}
	if !strings.Contains(res.Error, "allowed list") {
		t.Fatalf("expected not-allowed translation, got %q", res.Error)
	}
}

func TestGatewayErrorTranslation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", &ProviderError{Provider: ProviderTwilio, Status: 401, Message: "bad token"}, "credentials"},
		{"invalid request", &ProviderError{Provider: ProviderPindo, Status: 422, Message: "text too long"}, "rejected the request"},
		{"timeout", context.DeadlineExceeded, "timed out"},
		{"generic", errors.New("connection reset"), "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{results: []fakeResult{{err: tt.err}}}
			g := NewGateway(p, ProviderTwilio, "from", logging.New("error"))
			res := g.Send(context.Background(), "250792875310", "hello")
			if res.Success {
				t.Fatal("expected failure")
			}
			if !strings.Contains(res.Error, tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, res.Error)
			}
		})
	}
}

type slowProvider struct{}

func (slowProvider) Send(ctx context.Context, _, _, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(time.Second):
		return "late", nil
	}
}

func TestGatewaySendTimeout(t *testing.T) {
	g := NewGateway(slowProvider{}, ProviderPindo, "KleanHub", logging.New("error"),
		WithSendTimeout(10*time.Millisecond),
	)

	res := g.Send(context.Background(), "250792875310", "hello")
	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Fatalf("expected timeout translation, got %q", res.Error)
	}
}
