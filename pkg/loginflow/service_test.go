package loginflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/device-trust-demo/pkg/device"
	"github.com/tendant/device-trust-demo/pkg/notification"
	"github.com/tendant/device-trust-demo/pkg/tokengenerator"
	"github.com/tendant/device-trust-demo/pkg/twofa"
	"github.com/tendant/device-trust-demo/pkg/user"
)

const testVisitorData = `{"visitorId":"fp-1"}`

func setupFlowService(t *testing.T) (*FlowService, *notification.MockNotifier) {
	t.Helper()

	users := user.NewUserService(user.NewInMemUserRepository())
	devices := device.NewDeviceService(device.NewInMemDeviceRepository())

	notifier := notification.NewMockNotifier()
	validator, err := twofa.NewStaticPasscodeValidator("")
	require.NoError(t, err)
	challenges := twofa.NewChallengeService(validator, notifier)

	flow := NewFlowService(users, devices, challenges)

	_, err = users.Register(context.Background(), "Alice", "alice", "secret")
	require.NoError(t, err)

	return flow, notifier
}

func TestFlowService_Login_UnknownDevice(t *testing.T) {
	flow, notifier := setupFlowService(t)
	ctx := context.Background()

	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)

	assert.Equal(t, StateDeviceChallengePending, result.State)
	assert.NotEmpty(t, result.Pending.UserID)
	assert.Equal(t, testVisitorData, result.Pending.VisitorData)
	assert.Empty(t, result.Session.UserID)

	// A passcode was delivered
	sent, ok := notifier.Last()
	require.True(t, ok)
	assert.Equal(t, "alice", sent.To)
}

func TestFlowService_Login_BadCredentials(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	_, err := flow.Login(ctx, "alice", "wrong", testVisitorData)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = flow.Login(ctx, "nobody", "secret", testVisitorData)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestFlowService_Login_BadVisitorData(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	_, err := flow.Login(ctx, "alice", "secret", `"just a string"`)
	assert.ErrorIs(t, err, device.ErrInvalidVisitorData)
}

func TestFlowService_FullChallengeFlow(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	// First login: unknown device, challenge pending
	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)
	require.Equal(t, StateDeviceChallengePending, result.State)

	// Wrong passcode is rejected, flow stays pending
	_, err = flow.CompleteDeviceChallenge(ctx, result.Pending, "999999")
	assert.ErrorIs(t, err, ErrInvalidPasscode)

	// Correct passcode trusts the device and authenticates
	done, err := flow.CompleteDeviceChallenge(ctx, result.Pending, "112233")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, done.State)
	assert.Equal(t, result.Pending.UserID, done.Session.UserID)
	assert.NotEmpty(t, done.Session.DeviceID)

	// Second login from the same fingerprint skips the challenge
	again, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, again.State)
	assert.Equal(t, done.Session.DeviceID, again.Session.DeviceID)

	// A different fingerprint still triggers a challenge
	other, err := flow.Login(ctx, "alice", "secret", `{"visitorId":"fp-2"}`)
	require.NoError(t, err)
	assert.Equal(t, StateDeviceChallengePending, other.State)
}

func TestFlowService_RepeatChallengeDoesNotDuplicateDevice(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)

	first, err := flow.CompleteDeviceChallenge(ctx, result.Pending, "112233")
	require.NoError(t, err)

	// Replaying the pending claims reuses the existing registration
	second, err := flow.CompleteDeviceChallenge(ctx, result.Pending, "112233")
	require.NoError(t, err)
	assert.Equal(t, first.Session.DeviceID, second.Session.DeviceID)
}

func TestFlowService_ResumeChallenge(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)

	// Device still unknown: challenge stays pending
	resumed, err := flow.ResumeChallenge(ctx, result.Pending)
	require.NoError(t, err)
	assert.Equal(t, StateDeviceChallengePending, resumed.State)
	assert.Equal(t, result.Pending, resumed.Pending)

	// Complete the challenge, then resuming promotes straight to a session
	done, err := flow.CompleteDeviceChallenge(ctx, result.Pending, "112233")
	require.NoError(t, err)

	promoted, err := flow.ResumeChallenge(ctx, result.Pending)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, promoted.State)
	assert.Equal(t, done.Session.DeviceID, promoted.Session.DeviceID)

	_, err = flow.ResumeChallenge(ctx, tokengenerator.PendingDeviceClaims{})
	assert.ErrorIs(t, err, ErrNoChallengePending)
}

func TestFlowService_CancelChallenge(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)

	cancelled, err := flow.CancelChallenge(ctx, result.Pending)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, cancelled.State)

	_, err = flow.CancelChallenge(ctx, tokengenerator.PendingDeviceClaims{})
	assert.ErrorIs(t, err, ErrNoChallengePending)
}

func TestFlowService_ResolveSession(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)
	done, err := flow.CompleteDeviceChallenge(ctx, result.Pending, "112233")
	require.NoError(t, err)

	u, d, err := flow.ResolveSession(ctx, done.Session)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "fp-1", d.FingerprintID)

	// A session naming a missing device is rejected
	broken := done.Session
	broken.DeviceID = "missing"
	_, _, err = flow.ResolveSession(ctx, broken)
	assert.Error(t, err)
}

func TestFlowService_Logout(t *testing.T) {
	flow, _ := setupFlowService(t)
	ctx := context.Background()

	result, err := flow.Login(ctx, "alice", "secret", testVisitorData)
	require.NoError(t, err)
	done, err := flow.CompleteDeviceChallenge(ctx, result.Pending, "112233")
	require.NoError(t, err)

	out, err := flow.Logout(ctx, done.Session)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, out.State)
}
