package notification

import "sync"

// MockNotifier records sent notifications for assertions in tests
type MockNotifier struct {
	mutex sync.Mutex
	Sent  []NotificationData
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (n *MockNotifier) Send(notificationType NotificationType, notification NotificationData) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.Sent = append(n.Sent, notification)
	return nil
}

// Last returns the most recently sent notification
func (n *MockNotifier) Last() (NotificationData, bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if len(n.Sent) == 0 {
		return NotificationData{}, false
	}
	return n.Sent[len(n.Sent)-1], true
}
