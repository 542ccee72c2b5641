package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "timed out" }
func (timeoutErr) Timeout() bool { return true }

func TestRecorder_Counts(t *testing.T) {
	t.Parallel()

	r := New()
	r.RecordResolution("ENV", OutcomeSuccess)
	r.RecordResolution("ENV", OutcomeSuccess)
	r.RecordResolution("KEYCHAIN", OutcomeUndefined)
	r.RecordCommand("get", 200*time.Millisecond, nil)
	r.RecordCommand("get", time.Second, errors.New("boom"))
	r.RecordSignin("my", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.resolutionsTotal.WithLabelValues("ENV", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolutionsTotal.WithLabelValues("KEYCHAIN", OutcomeUndefined)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commandsTotal.WithLabelValues("get", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commandsTotal.WithLabelValues("get", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.signinsTotal.WithLabelValues("my", OutcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.commandDuration))
}

func TestRecorder_Nil(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordResolution("ENV", OutcomeSuccess)
		r.RecordCommand("get", time.Second, nil)
		r.RecordSignin("my", nil)
	})
	assert.Nil(t, r.Registry())
	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.RecordSignin("team", errors.New("bad password"))

	path := filepath.Join(t.TempDir(), "confsecrets.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `confsecrets_op_signins_total{account="team",outcome="error"} 1`)
}

func TestOutcomeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: OutcomeSuccess},
		{name: "plain", err: errors.New("x"), want: OutcomeError},
		{name: "timeout", err: timeoutErr{}, want: OutcomeTimeout},
		{name: "wrapped timeout", err: fmt.Errorf("op: %w", timeoutErr{}), want: OutcomeTimeout},
		{name: "deadline", err: context.DeadlineExceeded, want: OutcomeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OutcomeFor(tt.err))
		})
	}
}
