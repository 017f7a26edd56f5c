package connectivity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stockkeeper/internal/client/state"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		healthErr error
		name      string
		initial   bool
		want      bool
	}{
		{name: "reachable from offline", initial: false, healthErr: nil, want: true},
		{name: "unreachable from online", initial: true, healthErr: errors.New("dial tcp: refused"), want: false},
		{name: "still online", initial: true, healthErr: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := state.NewConnectivity(tt.initial)
			checker := &HealthCheckerMock{HealthFunc: func(ctx context.Context) error { return tt.healthErr }}
			p := NewProber(checker, flag, time.Second, discardLogger())

			assert.Equal(t, tt.want, p.Probe(context.Background()))
			assert.Equal(t, tt.want, flag.Online())
		})
	}
}

func TestProber_RunDisabled(t *testing.T) {
	checker := &HealthCheckerMock{HealthFunc: func(ctx context.Context) error { return nil }}
	p := NewProber(checker, state.NewConnectivity(true), 0, discardLogger())

	assert.False(t, p.Enabled())
	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, checker.HealthCalls())
}

func TestProber_RunPollsUntilCanceled(t *testing.T) {
	var healthy atomic.Bool
	checker := &HealthCheckerMock{HealthFunc: func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("unreachable")
	}}
	flag := state.NewConnectivity(true)
	p := NewProber(checker, flag, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return !flag.Online() }, time.Second, 5*time.Millisecond)

	healthy.Store(true)
	require.Eventually(t, flag.Online, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
