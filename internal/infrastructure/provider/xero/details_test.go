package xero

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContactDetails(t *testing.T) {
	tests := []struct {
		name        string
		phones      []Phone
		addresses   []Address
		wantPhone   string
		wantAddress string
	}{
		{
			name:        "preferred kinds win",
			phones:      []Phone{{PhoneType: "MOBILE", PhoneNumber: "222"}, {PhoneType: "DEFAULT", PhoneNumber: "111"}},
			addresses:   []Address{{AddressType: "POBOX", AddressLine1: "PO 9"}, {AddressType: "STREET", AddressLine1: "1 Main"}},
			wantPhone:   "111",
			wantAddress: "1 Main",
		},
		{
			name:        "blank preferred falls back",
			phones:      []Phone{{PhoneType: "DEFAULT", PhoneNumber: " "}, {PhoneType: "FAX", PhoneNumber: "333"}},
			addresses:   []Address{{AddressType: "STREET"}, {AddressType: "POBOX", AddressLine1: "PO 9"}},
			wantPhone:   "333",
			wantAddress: "PO 9",
		},
		{
			name: "nothing set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phone, address := ExtractContactDetails(tt.phones, tt.addresses)
			assert.Equal(t, tt.wantPhone, phone)
			assert.Equal(t, tt.wantAddress, address)
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{raw: "/Date(1700000000000+0000)/", want: time.UnixMilli(1700000000000).UTC()},
		{raw: "/Date(1700000000000)/", want: time.UnixMilli(1700000000000).UTC()},
		{raw: "2026-04-01T10:30:00", want: time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "2026-04-01", want: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
