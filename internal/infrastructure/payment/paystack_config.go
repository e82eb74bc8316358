package payment

import "errors"

// PaystackConfig holds Paystack webhook verification settings
type PaystackConfig struct {
	// SecretKey is the Paystack API secret key; webhook deliveries carry an
	// HMAC-SHA512 of the raw body keyed with it in x-paystack-signature
	SecretKey string
}

// Validate checks the configuration
func (c *PaystackConfig) Validate() error {
	if c.SecretKey == "" {
		return errors.New("paystack: secret key is required")
	}
	return nil
}
