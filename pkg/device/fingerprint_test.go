package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisitorData(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		vd, err := ParseVisitorData(`{"visitorId":"abc123","confidence":{"score":0.9}}`)
		require.NoError(t, err)
		assert.Equal(t, "abc123", vd.VisitorID)
	})

	t.Run("object without visitorId", func(t *testing.T) {
		vd, err := ParseVisitorData(`{"other":"field"}`)
		require.NoError(t, err)
		assert.Empty(t, vd.VisitorID)
	})

	t.Run("rejects non-object payloads", func(t *testing.T) {
		for _, raw := range []string{
			`not json at all`,
			`"a bare string"`,
			`42`,
			`["visitorId"]`,
			``,
		} {
			_, err := ParseVisitorData(raw)
			assert.ErrorIs(t, err, ErrInvalidVisitorData, "payload: %s", raw)
		}
	})
}
