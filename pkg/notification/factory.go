package notification

import "fmt"

// NewNotifier creates a notifier for the configured delivery kind
func NewNotifier(kind string, smtpConfig SMTPConfig) (Notifier, error) {
	switch kind {
	case "", "log":
		return NewLogNotifier(), nil
	case "email":
		return NewEmailNotifier(smtpConfig)
	default:
		return nil, fmt.Errorf("unsupported notifier kind: %s (supported: log, email)", kind)
	}
}
