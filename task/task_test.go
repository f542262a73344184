package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipview"
)

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	err := r.Run(context.Background(), "ok", func(ctx context.Context, progress zipview.ProgressFunc) error {
		progress(zipview.ProgressEvent{Message: "Reading", Fraction: 0.5})
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = r.Run(context.Background(), "fail", func(context.Context, zipview.ProgressFunc) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, r.Wait(), boom)
}

func TestTaskProgress(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	reported := make(chan struct{})
	release := make(chan struct{})
	task := r.Start(context.Background(), "progress", func(_ context.Context, progress zipview.ProgressFunc) error {
		progress(zipview.ProgressEvent{Stage: zipview.StageExtracting, Message: "Extracting files", Fraction: 0.25})
		close(reported)
		<-release
		return nil
	})

	<-reported
	assert.Equal(t, "progress", task.Name())
	assert.Equal(t, "Extracting files", task.Message())
	assert.InDelta(t, 0.25, task.Progress().Fraction, 1e-9)

	select {
	case <-task.Done():
		t.Fatal("task finished early")
	default:
	}

	close(release)
	require.NoError(t, task.Wait())
	<-task.Done()
}

func TestTaskCancel(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	started := make(chan struct{})
	task := r.Start(context.Background(), "cancel", func(ctx context.Context, _ zipview.ProgressFunc) error {
		close(started)
		<-ctx.Done()
		return nil
	})

	<-started
	task.Cancel()
	require.NoError(t, task.Wait())
}

func TestRunnerSerializes(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	release := make(chan struct{})
	first := r.Start(context.Background(), "first", func(context.Context, zipview.ProgressFunc) error {
		<-release
		return nil
	})

	_, err := r.TryStart(context.Background(), "second", func(context.Context, zipview.ProgressFunc) error {
		return nil
	})
	require.ErrorIs(t, err, ErrBusy)

	var running, peak atomic.Int32
	op := func(context.Context, zipview.ProgressFunc) error {
		n := running.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 3 {
			r.Start(context.Background(), "queued", op)
		}
	}()

	close(release)
	require.NoError(t, first.Wait())
	<-done
	require.NoError(t, r.Wait())
	assert.Equal(t, int32(1), peak.Load())
}
