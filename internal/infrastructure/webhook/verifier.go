// Package webhook builds the signature verifiers for provider webhooks. Both
// the identity provider and the billing provider deliver through svix.
package webhook

import (
	"errors"
	"fmt"

	svix "github.com/svix/svix-webhooks/go"
)

// Svix delivery headers.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// ErrEmptySecret is returned for an unset signing secret.
var ErrEmptySecret = errors.New("webhook: empty signing secret")

// NewVerifier returns a svix verifier for secret ("whsec_..." or bare
// base64). The returned value checks the signature and a five-minute
// timestamp tolerance.
func NewVerifier(secret string) (*svix.Webhook, error) {
	if secret == "" || secret == "whsec_" {
		return nil, ErrEmptySecret
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("webhook: decode secret: %w", err)
	}
	return wh, nil
}
