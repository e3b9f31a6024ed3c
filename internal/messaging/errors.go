package messaging

import (
	"fmt"
	"strings"
)

// ProviderError is a structured rejection from the messaging provider.
// Status is the HTTP status of the provider response, Code the provider's
// own error code when one was present in the body.
type ProviderError struct {
	Provider string
	Status   int
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d code %s: %s", e.Provider, e.Status, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}

// IsAuthFailure reports whether the provider rejected our credentials.
func (e *ProviderError) IsAuthFailure() bool {
	return e.Status == 401 || e.Status == 403
}

// Twilio rejects sends to unverified numbers on trial accounts with code
// 21608; Pindo reports "recipient_not_allowed" for numbers outside the
// account's allowed list.
var notAllowedCodes = map[string]struct{}{
	"21608":                 {},
	"recipient_not_allowed": {},
}

// IsRecipientNotAllowed reports whether the destination is outside the
// provider-side allowed list, the condition the gateway corrects once by
// re-formatting the destination.
func (e *ProviderError) IsRecipientNotAllowed() bool {
	if _, ok := notAllowedCodes[e.Code]; ok {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "not in the allowed list") ||
		strings.Contains(msg, "unverified") ||
		strings.Contains(msg, "not allowed")
}

// IsInvalidRequest reports whether the provider considered the request
// itself malformed.
func (e *ProviderError) IsInvalidRequest() bool {
	return e.Status == 400 || e.Status == 422
}
