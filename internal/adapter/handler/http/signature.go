package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// validSignature reports whether header is the base64 HMAC-SHA256 of body
// under secret. Xero and QuickBooks both sign this way.
func validSignature(body []byte, secret, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(given, mac.Sum(nil))
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
}

func parseEventTime(raw string) *time.Time {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
