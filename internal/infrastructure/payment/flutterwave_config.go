package payment

import "errors"

// FlutterwaveConfig holds Flutterwave webhook verification settings
type FlutterwaveConfig struct {
	// SecretHash is the value configured on the Flutterwave dashboard and
	// echoed back in the verif-hash header of every webhook delivery
	SecretHash string
}

// Validate checks the configuration
func (c *FlutterwaveConfig) Validate() error {
	if c.SecretHash == "" {
		return errors.New("flutterwave: secret hash is required")
	}
	return nil
}
