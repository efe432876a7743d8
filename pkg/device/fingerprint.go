package device

import (
	"encoding/json"
	"errors"
)

// ErrInvalidVisitorData is returned when the fingerprint payload is not a
// JSON object
var ErrInvalidVisitorData = errors.New("invalid visitor data format")

// VisitorData is the fingerprint payload posted by the login page. Only the
// visitor id is read; the rest of the object is carried through opaquely.
type VisitorData struct {
	VisitorID string `json:"visitorId"`
}

// ParseVisitorData decodes the raw fingerprint JSON. Anything that is not a
// JSON object (arrays, bare strings, numbers) is rejected.
func ParseVisitorData(raw string) (VisitorData, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return VisitorData{}, ErrInvalidVisitorData
	}

	var vd VisitorData
	if err := json.Unmarshal([]byte(raw), &vd); err != nil {
		return VisitorData{}, ErrInvalidVisitorData
	}
	return vd, nil
}
