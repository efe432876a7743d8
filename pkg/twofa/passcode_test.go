package twofa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/device-trust-demo/pkg/notification"
)

func TestValidatePasscodeFormat(t *testing.T) {
	assert.NoError(t, ValidatePasscodeFormat("112233"))
	assert.NoError(t, ValidatePasscodeFormat("000000"))

	assert.Error(t, ValidatePasscodeFormat(""))
	assert.Error(t, ValidatePasscodeFormat("12345"))
	assert.Error(t, ValidatePasscodeFormat("1234567"))
	assert.Error(t, ValidatePasscodeFormat("11223a"))
	assert.Error(t, ValidatePasscodeFormat("1122 3"))
	// Non-ASCII digits are rejected even though they are six runes
	assert.Error(t, ValidatePasscodeFormat("١٢٣٤٥٦"))
}

func TestStaticPasscodeValidator(t *testing.T) {
	ctx := context.Background()

	v, err := NewStaticPasscodeValidator("")
	require.NoError(t, err)

	issued, err := v.IssuePasscode(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultStaticPasscode, issued)

	ok, err := v.ValidatePasscode(ctx, "112233")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, bad := range []string{"112234", "11223", "", "abcdef"} {
		ok, err := v.ValidatePasscode(ctx, bad)
		require.NoError(t, err)
		assert.False(t, ok, "passcode: %q", bad)
	}

	_, err = NewStaticPasscodeValidator("12ab")
	assert.Error(t, err)
}

func TestTotpPasscodeValidator(t *testing.T) {
	ctx := context.Background()

	// Base32-encoded shared secret
	v, err := NewTotpPasscodeValidator("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	issued, err := v.IssuePasscode(ctx)
	require.NoError(t, err)
	require.NoError(t, ValidatePasscodeFormat(issued))

	ok, err := v.ValidatePasscode(ctx, issued)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.ValidatePasscode(ctx, "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewTotpPasscodeValidator("")
	assert.Error(t, err)
}

func TestChallengeService_BeginChallenge(t *testing.T) {
	ctx := context.Background()
	notifier := notification.NewMockNotifier()
	validator, err := NewStaticPasscodeValidator("")
	require.NoError(t, err)

	service := NewChallengeService(validator, notifier)
	require.NoError(t, service.BeginChallenge(ctx, "user-1", "alice"))

	sent, ok := notifier.Last()
	require.True(t, ok)
	assert.Equal(t, "alice", sent.To)
	assert.Contains(t, sent.Body, "112233")

	valid, err := service.CheckPasscode(ctx, "112233")
	require.NoError(t, err)
	assert.True(t, valid)
}
