package config

import "time"

// SubscriptionConfig contains configuration for the upstream webhook
// subscription edited by the reconciler.
type SubscriptionConfig struct {
	// APIBaseURL is the upstream provider's API root.
	APIBaseURL string `env:"SUBSCRIPTION_API_BASE_URL" envDefault:"https://api.helius.xyz"`

	// APIKey authenticates subscription edits.
	APIKey string `env:"SUBSCRIPTION_API_KEY"`

	// WebhookID identifies the single managed subscription.
	WebhookID string `env:"SUBSCRIPTION_WEBHOOK_ID"`

	// CallbackPath is appended to HTTPConfig.BaseURL to form the webhook
	// delivery URL registered upstream.
	CallbackPath string `env:"SUBSCRIPTION_CALLBACK_PATH" envDefault:"/api/webhook/events"`

	// RequestTimeout bounds each subscription edit call.
	RequestTimeout time.Duration `env:"SUBSCRIPTION_REQUEST_TIMEOUT" envDefault:"15s"`
}
