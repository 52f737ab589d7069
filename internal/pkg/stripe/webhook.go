package stripe

import (
	"errors"
	"strings"

	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	ErrMissingSignature = errors.New("missing Stripe signature")
	ErrInvalidSignature = errors.New("invalid Stripe signature")
	ErrNoWebhookSecret  = errors.New("stripe webhook secret not configured")
)

// VerifyEvent 校验签名并解析事件
func VerifyEvent(payload []byte, sigHeader, secret string) (stripelib.Event, error) {
	if strings.TrimSpace(secret) == "" {
		return stripelib.Event{}, ErrNoWebhookSecret
	}
	if strings.TrimSpace(sigHeader) == "" {
		return stripelib.Event{}, ErrMissingSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripelib.Event{}, ErrInvalidSignature
	}
	return event, nil
}
