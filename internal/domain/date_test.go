package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: "2026-08-30", want: "2026-08-30"},
		{name: "leap day", input: "2024-02-29", want: "2024-02-29"},
		{name: "invalid day", input: "2026-02-30", wantErr: true},
		{name: "wrong format", input: "30/08/2026", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "with time", input: "2026-08-30T12:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayNavigation(t *testing.T) {
	prev, err := PreviousDay("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", prev)

	next, err := NextDay("2026-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", next)

	_, err = PreviousDay("not-a-date")
	assert.Error(t, err)

	_, err = NextDay("not-a-date")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	got, err := ParseDate(Today())
	require.NoError(t, err)
	assert.Equal(t, got, Today())
}
