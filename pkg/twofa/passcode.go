package twofa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// PERIOD is the TOTP time step in seconds
	PERIOD = 300
	// SKEW is the number of periods accepted before/after the current one
	SKEW = 1
	// PasscodeLength is how many digits a passcode has
	PasscodeLength = 6
)

// DefaultStaticPasscode is the well-known demo passcode
const DefaultStaticPasscode = "112233"

// PasscodeValidator issues and checks device registration passcodes
type PasscodeValidator interface {
	// IssuePasscode produces the passcode to deliver to the user
	IssuePasscode(ctx context.Context) (string, error)

	// ValidatePasscode reports whether the submitted passcode is correct
	ValidatePasscode(ctx context.Context, passcode string) (bool, error)
}

// ValidatePasscodeFormat checks that a passcode is exactly six ASCII digits.
// It does not check correctness.
func ValidatePasscodeFormat(passcode string) error {
	if len(passcode) != PasscodeLength {
		return fmt.Errorf("passcode must be %d digits", PasscodeLength)
	}
	for i := 0; i < len(passcode); i++ {
		if passcode[i] < '0' || passcode[i] > '9' {
			return fmt.Errorf("passcode must contain only digits")
		}
	}
	return nil
}

// StaticPasscodeValidator accepts one fixed passcode. This is the demo
// default; every challenge uses the same code.
type StaticPasscodeValidator struct {
	Passcode string
}

// NewStaticPasscodeValidator creates a validator for the given fixed
// passcode, falling back to the demo default when empty
func NewStaticPasscodeValidator(passcode string) (*StaticPasscodeValidator, error) {
	if passcode == "" {
		passcode = DefaultStaticPasscode
	}
	if err := ValidatePasscodeFormat(passcode); err != nil {
		return nil, fmt.Errorf("invalid static passcode: %w", err)
	}
	return &StaticPasscodeValidator{Passcode: passcode}, nil
}

func (v *StaticPasscodeValidator) IssuePasscode(ctx context.Context) (string, error) {
	return v.Passcode, nil
}

func (v *StaticPasscodeValidator) ValidatePasscode(ctx context.Context, passcode string) (bool, error) {
	if err := ValidatePasscodeFormat(passcode); err != nil {
		return false, nil
	}
	return passcode == v.Passcode, nil
}

// TotpPasscodeValidator issues time-based passcodes from a shared secret
type TotpPasscodeValidator struct {
	Secret string
}

// NewTotpPasscodeValidator creates a TOTP validator for the given secret
func NewTotpPasscodeValidator(secret string) (*TotpPasscodeValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("totp secret is required")
	}
	return &TotpPasscodeValidator{Secret: secret}, nil
}

func (v *TotpPasscodeValidator) IssuePasscode(ctx context.Context) (string, error) {
	code, err := totp.GenerateCodeCustom(v.Secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to generate passcode", "error", err)
		return "", err
	}
	return code, nil
}

func (v *TotpPasscodeValidator) ValidatePasscode(ctx context.Context, passcode string) (bool, error) {
	if err := ValidatePasscodeFormat(passcode); err != nil {
		return false, nil
	}
	valid, err := totp.ValidateCustom(passcode, v.Secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate passcode", "error", err)
		return false, err
	}
	return valid, nil
}
