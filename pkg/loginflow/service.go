package loginflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/device-trust-demo/pkg/device"
	"github.com/tendant/device-trust-demo/pkg/tokengenerator"
	"github.com/tendant/device-trust-demo/pkg/twofa"
	"github.com/tendant/device-trust-demo/pkg/user"
)

// Result is the outcome of a flow step: the state the browser lands in and
// the claims for whichever cookie that state needs.
type Result struct {
	State State

	// Session is set when State is StateAuthenticated
	Session tokengenerator.SessionClaims

	// Pending is set when State is StateDeviceChallengePending
	Pending tokengenerator.PendingDeviceClaims
}

// FlowService drives the login flow across users, devices and challenges.
// Every step goes through Transition, so the flow cannot skip states.
type FlowService struct {
	users      *user.UserService
	devices    *device.DeviceService
	challenges *twofa.ChallengeService
}

// NewFlowService creates a new flow service
func NewFlowService(users *user.UserService, devices *device.DeviceService, challenges *twofa.ChallengeService) *FlowService {
	return &FlowService{
		users:      users,
		devices:    devices,
		challenges: challenges,
	}
}

// Login checks credentials and then routes by device recognition: a trusted
// device goes straight to an authenticated session, an unknown one gets a
// passcode challenge. rawVisitorData is the fingerprint JSON from the login
// form and is carried into the pending claims untouched.
func (s *FlowService) Login(ctx context.Context, username, password, rawVisitorData string) (Result, error) {
	vd, err := device.ParseVisitorData(rawVisitorData)
	if err != nil {
		return Result{}, err
	}

	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return Result{}, err
	}

	state, err := Transition(StateAnonymous, EventCredentialsValid)
	if err != nil {
		return Result{}, err
	}

	d, trusted, err := s.devices.IsTrusted(ctx, u.ID, vd.VisitorID)
	if err != nil {
		return Result{}, err
	}

	if trusted {
		state, err = Transition(state, EventDeviceRecognized)
		if err != nil {
			return Result{}, err
		}
		if err := s.devices.TouchLastUsed(ctx, d.ID); err != nil {
			slog.Warn("failed to update device last used", "deviceID", d.ID, "err", err)
		}
		slog.Info("login on trusted device", "userID", u.ID, "deviceID", d.ID)
		return Result{
			State:   state,
			Session: tokengenerator.SessionClaims{UserID: u.ID, DeviceID: d.ID},
		}, nil
	}

	state, err = Transition(state, EventDeviceUnknown)
	if err != nil {
		return Result{}, err
	}

	if err := s.challenges.BeginChallenge(ctx, u.ID, u.Username); err != nil {
		return Result{}, fmt.Errorf("failed to start device challenge: %w", err)
	}

	return Result{
		State:   state,
		Pending: tokengenerator.PendingDeviceClaims{UserID: u.ID, VisitorData: rawVisitorData},
	}, nil
}

// CompleteDeviceChallenge checks the submitted passcode and, if correct,
// registers the pending fingerprint as a trusted device and promotes the
// flow to an authenticated session.
func (s *FlowService) CompleteDeviceChallenge(ctx context.Context, pending tokengenerator.PendingDeviceClaims, passcode string) (Result, error) {
	if pending.UserID == "" {
		return Result{}, ErrNoChallengePending
	}

	ok, err := s.challenges.CheckPasscode(ctx, passcode)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check passcode: %w", err)
	}
	if !ok {
		return Result{}, ErrInvalidPasscode
	}

	vd, err := device.ParseVisitorData(pending.VisitorData)
	if err != nil {
		return Result{}, err
	}

	state, err := Transition(StateDeviceChallengePending, EventPasscodeAccepted)
	if err != nil {
		return Result{}, err
	}

	d, err := s.devices.TrustDevice(ctx, pending.UserID, vd.VisitorID)
	if err != nil {
		return Result{}, err
	}

	slog.Info("device challenge completed", "userID", pending.UserID, "deviceID", d.ID)
	return Result{
		State:   state,
		Session: tokengenerator.SessionClaims{UserID: pending.UserID, DeviceID: d.ID},
	}, nil
}

// ResumeChallenge re-evaluates an outstanding challenge. If the pending
// fingerprint became trusted in the meantime the flow is promoted straight
// to an authenticated session; otherwise the challenge stays pending.
func (s *FlowService) ResumeChallenge(ctx context.Context, pending tokengenerator.PendingDeviceClaims) (Result, error) {
	if pending.UserID == "" {
		return Result{}, ErrNoChallengePending
	}

	if _, err := s.ResolvePending(ctx, pending); err != nil {
		return Result{}, err
	}

	vd, err := device.ParseVisitorData(pending.VisitorData)
	if err != nil {
		return Result{}, err
	}

	d, trusted, err := s.devices.IsTrusted(ctx, pending.UserID, vd.VisitorID)
	if err != nil {
		return Result{}, err
	}

	if !trusted {
		return Result{State: StateDeviceChallengePending, Pending: pending}, nil
	}

	state, err := Transition(StateDeviceChallengePending, EventDeviceRecognized)
	if err != nil {
		return Result{}, err
	}
	if err := s.devices.TouchLastUsed(ctx, d.ID); err != nil {
		slog.Warn("failed to update device last used", "deviceID", d.ID, "err", err)
	}
	return Result{
		State:   state,
		Session: tokengenerator.SessionClaims{UserID: pending.UserID, DeviceID: d.ID},
	}, nil
}

// CancelChallenge abandons a pending device challenge
func (s *FlowService) CancelChallenge(ctx context.Context, pending tokengenerator.PendingDeviceClaims) (Result, error) {
	if pending.UserID == "" {
		return Result{}, ErrNoChallengePending
	}

	state, err := Transition(StateDeviceChallengePending, EventChallengeCancelled)
	if err != nil {
		return Result{}, err
	}

	slog.Info("device challenge cancelled", "userID", pending.UserID)
	return Result{State: state}, nil
}

// Logout ends an authenticated session
func (s *FlowService) Logout(ctx context.Context, session tokengenerator.SessionClaims) (Result, error) {
	state, err := Transition(StateAuthenticated, EventLoggedOut)
	if err != nil {
		return Result{}, err
	}

	slog.Info("logged out", "userID", session.UserID)
	return Result{State: state}, nil
}

// ResolveSession loads the user and device behind a session cookie. A
// session whose user or device no longer exists is treated as not logged in.
func (s *FlowService) ResolveSession(ctx context.Context, session tokengenerator.SessionClaims) (user.User, device.Device, error) {
	u, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		return user.User{}, device.Device{}, fmt.Errorf("session user not found: %w", err)
	}

	d, err := s.devices.GetDevice(ctx, session.DeviceID)
	if err != nil {
		return user.User{}, device.Device{}, fmt.Errorf("session device not found: %w", err)
	}

	return u, d, nil
}

// ResolvePending loads the user behind a pending device cookie
func (s *FlowService) ResolvePending(ctx context.Context, pending tokengenerator.PendingDeviceClaims) (user.User, error) {
	if pending.UserID == "" {
		return user.User{}, ErrNoChallengePending
	}

	u, err := s.users.GetUser(ctx, pending.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, ErrNoChallengePending
		}
		return user.User{}, err
	}
	return u, nil
}
