package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/notify"
)

// fakeMessenger records sends and lets tests control probe outcomes.
type fakeMessenger struct {
	sent     []domain.MessageRef
	deleted  []domain.MessageRef
	existing map[domain.MessageRef]bool
	probeErr error
	sendErr  error
	probes   int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{existing: make(map[domain.MessageRef]bool)}
}

func (f *fakeMessenger) Send(ctx context.Context, channelID string, msg notify.Message) (domain.MessageRef, error) {
	if f.sendErr != nil {
		return domain.MessageRef{}, f.sendErr
	}
	ref := domain.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", len(f.sent)+1)}
	f.sent = append(f.sent, ref)
	f.existing[ref] = true
	return ref, nil
}

func (f *fakeMessenger) Exists(ctx context.Context, ref domain.MessageRef) (bool, error) {
	f.probes++
	if f.probeErr != nil {
		return false, f.probeErr
	}
	return f.existing[ref], nil
}

func (f *fakeMessenger) Delete(ctx context.Context, ref domain.MessageRef) error {
	f.deleted = append(f.deleted, ref)
	delete(f.existing, ref)
	return nil
}

func render() notify.Message {
	return notify.Message{Content: "alerta"}
}

func TestEnsureNotified_SendsOnce(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	alert, changed, err := n.EnsureNotified(ctx, "chan", domain.PhaseWater, domain.AlertState{}, render)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, alert.Sent)
	assert.False(t, alert.Message.IsZero())
	assert.Len(t, m.sent, 1)

	// Any number of further ticks with the same state send nothing.
	for i := 0; i < 5; i++ {
		var again bool
		alert, again, err = n.EnsureNotified(ctx, "chan", domain.PhaseWater, alert, render)
		require.NoError(t, err)
		assert.False(t, again)
	}
	assert.Len(t, m.sent, 1)
}

func TestEnsureNotified_FlagAuthoritativeWhenMessageGone(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	alert, _, err := n.EnsureNotified(ctx, "chan", domain.PhaseHarvest, domain.AlertState{}, render)
	require.NoError(t, err)

	// A moderator deletes the alert message out from under us. The
	// one-shot flag still suppresses a resend.
	delete(m.existing, alert.Message)

	// Build a fresh notifier so the probe cache cannot mask the delete.
	n2 := notify.NewNotifier(m)
	_, changed, err := n2.EnsureNotified(ctx, "chan", domain.PhaseHarvest, alert, render)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, m.sent, 1)
}

func TestEnsureNotified_ProbeErrorSuppresses(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	alert := domain.AlertState{
		Sent:    false, // flag lost somehow; ref alone must still not resend on probe failure
		Message: domain.MessageRef{ChannelID: "chan", MessageID: "old"},
	}
	m.probeErr = errors.New("network down")

	got, changed, err := n.EnsureNotified(ctx, "chan", domain.PhaseWater, alert, render)
	require.NoError(t, err, "probe failure is soft")
	assert.False(t, changed)
	assert.Equal(t, alert, got)
	assert.Empty(t, m.sent)
}

func TestEnsureNotified_SendFailureLeavesFlagUnset(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	m.sendErr = errors.New("rate limited")
	alert, changed, err := n.EnsureNotified(ctx, "chan", domain.PhaseReady, domain.AlertState{}, render)
	require.Error(t, err)
	assert.False(t, changed)
	assert.False(t, alert.Sent, "failed send must not mark the phase notified")

	// Next tick retries and succeeds.
	m.sendErr = nil
	alert, changed, err = n.EnsureNotified(ctx, "chan", domain.PhaseReady, alert, render)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, alert.Sent)
	assert.Len(t, m.sent, 1)
}

func TestEnsureNotified_LiveMessageSkipsWithoutProbeSpam(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	alert, _, err := n.EnsureNotified(ctx, "chan", domain.PhaseWater, domain.AlertState{}, render)
	require.NoError(t, err)

	probesBefore := m.probes
	for i := 0; i < 10; i++ {
		_, _, err = n.EnsureNotified(ctx, "chan", domain.PhaseWater, alert, render)
		require.NoError(t, err)
	}
	// The positive probe cache absorbs repeat checks within its TTL.
	assert.Equal(t, probesBefore, m.probes)
}

func TestMessageLive(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	ref := domain.MessageRef{ChannelID: "c", MessageID: "x"}
	live, err := n.MessageLive(ctx, ref)
	require.NoError(t, err)
	assert.False(t, live)

	m.existing[ref] = true
	live, err = n.MessageLive(ctx, ref)
	require.NoError(t, err)
	assert.True(t, live)
}

func TestCleanupMessages_BestEffort(t *testing.T) {
	m := newFakeMessenger()
	n := notify.NewNotifier(m)
	ctx := context.Background()

	refs := []domain.MessageRef{
		{}, // zero refs skipped
		{ChannelID: "c", MessageID: "a"},
		{ChannelID: "c", MessageID: "b"},
	}
	n.CleanupMessages(ctx, refs)
	assert.Len(t, m.deleted, 2)
}
