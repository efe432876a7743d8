package twofa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/device-trust-demo/pkg/notification"
)

// ChallengeService runs the device registration challenge: issue a passcode,
// deliver it, and check what the user submits.
type ChallengeService struct {
	validator PasscodeValidator
	notifier  notification.Notifier
}

// NewChallengeService creates a new challenge service
func NewChallengeService(validator PasscodeValidator, notifier notification.Notifier) *ChallengeService {
	return &ChallengeService{
		validator: validator,
		notifier:  notifier,
	}
}

// BeginChallenge issues a passcode for the user and delivers it through the
// configured notifier
func (s *ChallengeService) BeginChallenge(ctx context.Context, userID, username string) error {
	passcode, err := s.validator.IssuePasscode(ctx)
	if err != nil {
		return fmt.Errorf("failed to issue passcode: %w", err)
	}

	err = s.notifier.Send(notification.DevicePasscodeNotification, notification.NotificationData{
		To:      username,
		Subject: "Confirm your new device",
		Body:    fmt.Sprintf("Your device registration code is %s", passcode),
		Data: map[string]string{
			"passcode": passcode,
			"user_id":  userID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to deliver passcode: %w", err)
	}

	slog.Info("device challenge started", "userID", userID)
	return nil
}

// CheckPasscode reports whether the submitted passcode completes the
// challenge
func (s *ChallengeService) CheckPasscode(ctx context.Context, passcode string) (bool, error) {
	return s.validator.ValidatePasscode(ctx, passcode)
}
