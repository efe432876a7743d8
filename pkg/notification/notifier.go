package notification

// NotificationType represents a type of notification (e.g., "device_passcode").
type NotificationType string

const (
	// DevicePasscodeNotification carries the one-time passcode for a
	// device registration challenge
	DevicePasscodeNotification NotificationType = "device_passcode"
)

type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: Subject for notifications like email
	Body    string            // The content or message to send
	Data    map[string]string // Additional metadata (e.g., passcode, username)
}

type Notifier interface {
	Send(notificationType NotificationType, notification NotificationData) error
}
