package notification

import "log/slog"

// LogNotifier writes notifications to the application log instead of
// delivering them. This is the demo default so the passcode is visible
// without a mail server.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(notificationType NotificationType, notification NotificationData) error {
	slog.Info("notification",
		"type", notificationType,
		"to", notification.To,
		"subject", notification.Subject,
		"body", notification.Body,
		"data", notification.Data,
	)
	return nil
}
