package schedule

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrigger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "every minute", spec: "* * * * *", wantErr: false},
		{name: "daily at 2am", spec: "0 2 * * *", wantErr: false},
		{name: "empty", spec: "", wantErr: true},
		{name: "garbage", spec: "not a cron spec", wantErr: true},
		{name: "too few fields", spec: "0 2 *", wantErr: true},
		{name: "out of range", spec: "60 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, err := NewTrigger(tt.spec, func() {}, logger)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCronSpec)
				assert.Nil(t, trigger)
			} else {
				require.NoError(t, err)
				require.NotNil(t, trigger)
			}
		})
	}
}

func TestTrigger_NextRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	trigger, err := NewTrigger("* * * * *", func() {}, logger)
	require.NoError(t, err)

	next := trigger.NextRun()
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Before(time.Now().Add(time.Minute+time.Second)))
}
