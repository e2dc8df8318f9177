package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() JobSpec {
	return JobSpec{
		Name:          "convert-chunk-01",
		JobQueue:      "default",
		JobDefinition: "converter:3",
		Command:       []string{"convert", "--chunk", "01"},
		Resources:     ResourceSpec{VCPUs: 2, MemoryMiB: 4096},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := testSpec()
	b := testSpec()

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}

func TestFingerprint_IgnoresName(t *testing.T) {
	a := testSpec()
	b := testSpec()
	b.Name = "a-different-display-name"

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_SensitiveToWork(t *testing.T) {
	a := testSpec()

	b := testSpec()
	b.Command = []string{"convert", "--chunk", "02"}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	c := testSpec()
	c.Resources.MemoryMiB = 8192
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := testSpec()
	d.JobDefinition = "converter:4"
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

func TestNewJobRecord(t *testing.T) {
	now := time.Now()
	spec := testSpec()
	rec := NewJobRecord("rec-1", spec, "remote-1", now)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "remote-1", rec.RemoteID)
	assert.Equal(t, spec.Fingerprint(), rec.Fingerprint)
	assert.Equal(t, StatusSubmitted, rec.Status)
	require.Len(t, rec.StatusHistory, 1)
	assert.Equal(t, StatusSubmitted, rec.StatusHistory[0].Status)
	assert.False(t, rec.Terminal())
}

func TestApplyStatus_AdvancesAndAppendsHistory(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord("rec-1", testSpec(), "remote-1", now)

	for i, status := range []JobStatus{StatusRunnable, StatusStarting, StatusRunning, StatusSucceeded} {
		changed, err := rec.ApplyStatus(status, now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, status, rec.Status)
	}

	assert.Len(t, rec.StatusHistory, 5)
	assert.True(t, rec.Terminal())
}

func TestApplyStatus_ReobservationIsNoOp(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord("rec-1", testSpec(), "remote-1", now)

	_, err := rec.ApplyStatus(StatusRunning, now)
	require.NoError(t, err)

	// Same status again.
	changed, err := rec.ApplyStatus(StatusRunning, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, changed)

	// An earlier status, as a delayed poll might report.
	changed, err = rec.ApplyStatus(StatusRunnable, now.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, StatusRunning, rec.Status)
	assert.Len(t, rec.StatusHistory, 2)
}

func TestApplyStatus_SkipsIntermediateStates(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord("rec-1", testSpec(), "remote-1", now)

	changed, err := rec.ApplyStatus(StatusSucceeded, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusSucceeded, rec.Status)
}

func TestApplyStatus_TerminalRecordIsImmutable(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord("rec-1", testSpec(), "remote-1", now)
	_, err := rec.ApplyStatus(StatusSucceeded, now)
	require.NoError(t, err)

	// Re-observing the terminal status is fine.
	changed, err := rec.ApplyStatus(StatusSucceeded, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, changed)

	// Any other transition is a defect.
	_, err = rec.ApplyStatus(StatusFailed, now.Add(time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTerminalTransition)
	assert.Equal(t, KindInvariant, KindOf(err))

	_, err = rec.ApplyStatus(StatusRunning, now.Add(time.Second))
	assert.ErrorIs(t, err, ErrTerminalTransition)

	assert.Equal(t, StatusSucceeded, rec.Status)
	assert.Len(t, rec.StatusHistory, 1)
}

func TestApplyStatus_RejectsUnknownStatus(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord("rec-1", testSpec(), "remote-1", now)

	_, err := rec.ApplyStatus(JobStatus("PENDING"), now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestFail(t *testing.T) {
	now := time.Now()
	rec := NewJobRecord("rec-1", testSpec(), "remote-1", now)

	err := rec.Fail("container exited 137", now)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "container exited 137", rec.LastError)
	assert.True(t, rec.Terminal())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
	assert.False(t, StatusRunning.Terminal())
}
