package twofa

import "fmt"

// ValidatorConfig contains configuration for creating a passcode validator
type ValidatorConfig struct {
	// StaticPasscode is used by the static validator; empty means the
	// demo default
	StaticPasscode string
	// TotpSecret is required for the totp validator
	TotpSecret string
}

// NewPasscodeValidator creates a passcode validator for the configured mode
func NewPasscodeValidator(mode string, config ValidatorConfig) (PasscodeValidator, error) {
	switch mode {
	case "", "static":
		return NewStaticPasscodeValidator(config.StaticPasscode)
	case "totp":
		return NewTotpPasscodeValidator(config.TotpSecret)
	default:
		return nil, fmt.Errorf("unsupported passcode mode: %s (supported: static, totp)", mode)
	}
}
