package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/eventlog"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/notify"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/store"
)

type fakeMessenger struct {
	sends    []sentMessage
	existing map[domain.MessageRef]bool
	sendErr  error
	nextID   int
}

type sentMessage struct {
	ChannelID string
	Message   notify.Message
	Ref       domain.MessageRef
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{existing: make(map[domain.MessageRef]bool)}
}

func (f *fakeMessenger) Send(ctx context.Context, channelID string, msg notify.Message) (domain.MessageRef, error) {
	if f.sendErr != nil {
		return domain.MessageRef{}, f.sendErr
	}
	f.nextID++
	ref := domain.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", f.nextID)}
	f.sends = append(f.sends, sentMessage{ChannelID: channelID, Message: msg, Ref: ref})
	f.existing[ref] = true
	return ref, nil
}

func (f *fakeMessenger) Exists(ctx context.Context, ref domain.MessageRef) (bool, error) {
	return f.existing[ref], nil
}

func (f *fakeMessenger) Delete(ctx context.Context, ref domain.MessageRef) error {
	delete(f.existing, ref)
	return nil
}

type fakePresenter struct {
	messenger notify.Messenger
	posts     int
	refreshes int
}

func (f *fakePresenter) PostPlantation(ctx context.Context, p domain.Plantation) (domain.MessageRef, error) {
	f.posts++
	return f.messenger.Send(ctx, p.EmbedChannelID, notify.Message{Content: fmt.Sprintf("embed #%d", p.ID)})
}

func (f *fakePresenter) RefreshPlantation(ctx context.Context, p domain.Plantation) error {
	f.refreshes++
	return nil
}

// gateMessenger suspends the first send matched by gate until release
// is closed, simulating a slow network round trip inside a tick.
type gateMessenger struct {
	*fakeMessenger
	gate    func(notify.Message) bool
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateMessenger(gate func(notify.Message) bool) *gateMessenger {
	return &gateMessenger{
		fakeMessenger: newFakeMessenger(),
		gate:          gate,
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (g *gateMessenger) Send(ctx context.Context, channelID string, msg notify.Message) (domain.MessageRef, error) {
	if g.gate(msg) {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.fakeMessenger.Send(ctx, channelID, msg)
}

type fakeMentioner struct{}

func (fakeMentioner) Mention(ctx context.Context) string { return "@here" }

type fixture struct {
	repo      *store.Store
	messenger *fakeMessenger
	presenter *fakePresenter
	job       *Job
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := store.New(t.TempDir())
	require.NoError(t, err)

	messenger := newFakeMessenger()
	presenter := &fakePresenter{messenger: messenger}
	f := &fixture{
		repo:      repo,
		messenger: messenger,
		presenter: presenter,
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.job = NewJob(repo, notify.NewNotifier(messenger), messenger, presenter, fakeMentioner{}).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) tick(t *testing.T) {
	t.Helper()
	require.NoError(t, f.job.Process(context.Background()))
}

// alertSends returns the sends that are phase alerts, skipping embeds.
func (f *fixture) alertSends() []sentMessage {
	out := make([]sentMessage, 0, len(f.messenger.sends))
	for _, s := range f.messenger.sends {
		if !strings.HasPrefix(s.Message.Content, "embed ") {
			out = append(out, s)
		}
	}
	return out
}

func (f *fixture) seedHarvest(t *testing.T, waterAt, harvestAt time.Time) domain.Plantation {
	t.Helper()
	p, err := f.repo.CreatePlantation(context.Background(), domain.Plantation{
		Kind:            domain.KindHarvest,
		OwnerID:         "user-1",
		CreatedAt:       f.now,
		EmbedChannelID:  "chan-embed",
		NotifyChannelID: "chan-alerts",
		NextWaterAt:     waterAt,
		NextHarvestAt:   harvestAt,
	})
	require.NoError(t, err)
	return p
}

func TestTick_WaterAlertAtMostOnce(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(-time.Minute), f.now.Add(time.Hour))

	for i := 0; i < 5; i++ {
		f.tick(t)
	}

	alerts := f.alertSends()
	require.Len(t, alerts, 1)
	assert.Equal(t, "chan-alerts", alerts[0].ChannelID)
	assert.Contains(t, alerts[0].Message.Content, "regar")
	require.Len(t, alerts[0].Message.Buttons, 1)
	assert.Equal(t, domain.PlantButtonID(domain.ButtonActionWater, p.ID), alerts[0].Message.Buttons[0].CustomID)

	stored, err := f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, stored.WaterAlert.Sent)
	assert.Equal(t, alerts[0].Ref, stored.WaterAlert.Message)
}

func TestTick_DeletedAlertNotResent(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(-time.Minute), f.now.Add(time.Hour))

	f.tick(t)
	require.Len(t, f.alertSends(), 1)

	// Someone deletes the alert message by hand. The durable flag still
	// marks the deadline as notified.
	require.NoError(t, f.messenger.Delete(context.Background(), f.alertSends()[0].Ref))

	// Fresh notifier so the liveness cache can't mask the deletion.
	f.job.notifier = notify.NewNotifier(f.messenger)
	f.tick(t)

	assert.Len(t, f.alertSends(), 1)

	stored, err := f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, stored.WaterAlert.Sent)
}

func TestTick_RearmedDeadlineAlertsAgain(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(-time.Minute), f.now.Add(48*time.Hour))

	f.tick(t)
	require.Len(t, f.alertSends(), 1)

	// A water action moves the deadline forward and clears the alert.
	nextWater := f.now.Add(2*time.Hour + 40*time.Minute)
	_, err := f.repo.PatchPlantation(context.Background(), p.ID, store.PlantationPatch{
		NextWaterAt: &nextWater,
		WaterAlert:  &domain.AlertState{},
	})
	require.NoError(t, err)

	f.tick(t)
	assert.Len(t, f.alertSends(), 1, "alert before the new deadline")

	f.now = nextWater.Add(time.Second)
	f.tick(t)
	assert.Len(t, f.alertSends(), 2, "new deadline gets its own alert")
}

func TestTick_WaterAndHarvestDueTogether(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(-time.Minute), f.now.Add(-time.Minute))

	f.tick(t)

	alerts := f.alertSends()
	require.Len(t, alerts, 2)
	assert.Contains(t, alerts[0].Message.Content, "regar")
	assert.Contains(t, alerts[1].Message.Content, "cosechar")

	stored, err := f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, stored.WaterAlert.Sent)
	assert.True(t, stored.HarvestAlert.Sent)
}

func TestTick_DuplicateReadyAlert(t *testing.T) {
	f := newFixture(t)
	p, err := f.repo.CreatePlantation(context.Background(), domain.Plantation{
		Kind:           domain.KindDuplicate,
		OwnerID:        "user-1",
		CreatedAt:      f.now,
		EmbedChannelID: "chan-embed",
		ReadyAt:        f.now.Add(-time.Second),
	})
	require.NoError(t, err)

	f.tick(t)
	f.tick(t)

	alerts := f.alertSends()
	require.Len(t, alerts, 1)
	// No dedicated alert channel configured, falls back to the embed channel.
	assert.Equal(t, "chan-embed", alerts[0].ChannelID)
	assert.Contains(t, alerts[0].Message.Content, "cultivar")
	assert.Equal(t, domain.PlantButtonID(domain.ButtonActionCultivate, p.ID), alerts[0].Message.Buttons[0].CustomID)
}

func TestTick_PrimaryRecreatedOnce(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(time.Hour), f.now.Add(2*time.Hour))

	f.tick(t)
	assert.Equal(t, 1, f.presenter.posts, "missing primary gets posted")

	stored, err := f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Primary.IsZero())

	f.tick(t)
	f.tick(t)
	assert.Equal(t, 1, f.presenter.posts, "live primary is left alone")
}

func TestTick_PrimaryRecreatedAfterExternalDelete(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(time.Hour), f.now.Add(2*time.Hour))

	f.tick(t)
	stored, err := f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	first := stored.Primary

	require.NoError(t, f.messenger.Delete(context.Background(), first))
	f.job.notifier = notify.NewNotifier(f.messenger)
	f.tick(t)

	assert.Equal(t, 2, f.presenter.posts)
	stored, err = f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, stored.Primary)
}

func TestTick_SendFailureRetriesNextTick(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(-time.Minute), f.now.Add(time.Hour))

	f.messenger.sendErr = errors.New("rate limited")
	f.tick(t)
	assert.Empty(t, f.alertSends())

	stored, err := f.repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.WaterAlert.Sent, "flag stays unset until a send succeeds")

	f.messenger.sendErr = nil
	f.tick(t)
	assert.Len(t, f.alertSends(), 1)
}

func TestTick_CompletedPlantationIgnored(t *testing.T) {
	f := newFixture(t)
	p := f.seedHarvest(t, f.now.Add(-time.Minute), f.now.Add(-time.Minute))

	done := true
	_, err := f.repo.PatchPlantation(context.Background(), p.ID, store.PlantationPatch{Completed: &done})
	require.NoError(t, err)

	f.tick(t)
	assert.Empty(t, f.messenger.sends)
	assert.Zero(t, f.presenter.posts)
}

func TestTick_CooldownDMOnce(t *testing.T) {
	f := newFixture(t)

	task, err := f.repo.ReplaceTask(context.Background(), domain.CooldownTask{
		OwnerID:     "user-1",
		Kind:        domain.TaskTrabajo,
		CreatedAt:   f.now.Add(-time.Hour),
		DMChannelID: "dm-1",
		ReadyAt:     f.now.Add(-time.Second),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f.tick(t)
	}

	require.Len(t, f.messenger.sends, 1)
	assert.Equal(t, "dm-1", f.messenger.sends[0].ChannelID)
	assert.Contains(t, f.messenger.sends[0].Message.Content, string(domain.TaskTrabajo))

	stored, err := f.repo.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.True(t, stored.Notified())
}

func TestTick_CooldownNotDueYet(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.ReplaceTask(context.Background(), domain.CooldownTask{
		OwnerID:     "user-1",
		Kind:        domain.TaskAtraco,
		CreatedAt:   f.now,
		DMChannelID: "dm-1",
		ReadyAt:     f.now.Add(6 * time.Hour),
	})
	require.NoError(t, err)

	f.tick(t)
	assert.Empty(t, f.messenger.sends)
}

func TestTick_ActionDuringAlertSendKeepsRearm(t *testing.T) {
	repo, err := store.New(t.TempDir())
	require.NoError(t, err)

	messenger := newGateMessenger(func(m notify.Message) bool {
		return !strings.HasPrefix(m.Content, "embed ")
	})
	presenter := &fakePresenter{messenger: messenger}
	svc := plantation.NewService(repo, eventlog.NewService(repo))

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	job := NewJob(repo, notify.NewNotifier(messenger), messenger, presenter, fakeMentioner{}).
		WithClock(func() time.Time { return clock })

	p, err := repo.CreatePlantation(context.Background(), domain.Plantation{
		Kind:            domain.KindHarvest,
		OwnerID:         "user-1",
		CreatedAt:       clock.Add(-3 * time.Hour),
		EmbedChannelID:  "chan-embed",
		NotifyChannelID: "chan-alerts",
		NextWaterAt:     clock.Add(-time.Minute),
		NextHarvestAt:   clock.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		_ = job.Process(context.Background())
	}()
	<-messenger.entered

	// The tick is suspended inside the alert send with the alert state
	// it read. A watering action arrives on an interaction goroutine;
	// it must wait out the tick's span, not interleave with it.
	waterDone := make(chan struct{})
	var waterErr error
	go func() {
		defer close(waterDone)
		_, waterErr = svc.Water(context.Background(), p.ID, plantation.Actor{ID: "user-1", Tag: "user#1"}, clock)
	}()

	time.Sleep(20 * time.Millisecond)
	close(messenger.release)
	<-tickDone
	<-waterDone
	require.NoError(t, waterErr)

	stored, err := repo.GetPlantation(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.WaterAlert.Sent, "the watering re-arm must survive the tick's late patch")
	assert.True(t, stored.WaterAlert.Message.IsZero())
	assert.Equal(t, clock.Add(2*time.Hour+40*time.Minute), stored.NextWaterAt)

	clock = stored.NextWaterAt.Add(time.Second)
	require.NoError(t, job.Process(context.Background()))

	alerts := 0
	for _, s := range messenger.sends {
		if !strings.HasPrefix(s.Message.Content, "embed ") {
			alerts++
		}
	}
	assert.Equal(t, 2, alerts, "re-armed deadline must get its own alert")
}

func TestTick_DeleteDuringEmbedRepostHandsOverMessage(t *testing.T) {
	repo, err := store.New(t.TempDir())
	require.NoError(t, err)

	messenger := newGateMessenger(func(m notify.Message) bool {
		return strings.HasPrefix(m.Content, "embed ")
	})
	presenter := &fakePresenter{messenger: messenger}
	svc := plantation.NewService(repo, eventlog.NewService(repo))

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	job := NewJob(repo, notify.NewNotifier(messenger), messenger, presenter, fakeMentioner{}).
		WithClock(func() time.Time { return clock })

	p, err := repo.CreatePlantation(context.Background(), domain.Plantation{
		Kind:           domain.KindHarvest,
		OwnerID:        "user-1",
		CreatedAt:      clock,
		EmbedChannelID: "chan-embed",
		NextWaterAt:    clock.Add(time.Hour),
		NextHarvestAt:  clock.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		_ = job.Process(context.Background())
	}()
	<-messenger.entered

	// An admin deletes the plantation while the tick is suspended in
	// the embed repost. The delete waits out the span and collects the
	// freshly posted message for cleanup instead of orphaning it.
	type deleteOut struct {
		res *plantation.ActionResult
		err error
	}
	deleted := make(chan deleteOut, 1)
	go func() {
		res, err := svc.Delete(context.Background(), p.ID, plantation.Actor{ID: "admin-1", Tag: "admin#1"}, true)
		deleted <- deleteOut{res, err}
	}()

	time.Sleep(20 * time.Millisecond)
	close(messenger.release)
	<-tickDone
	out := <-deleted
	require.NoError(t, out.err)

	require.Len(t, messenger.sends, 1)
	assert.Contains(t, out.res.ConsumedMessages, messenger.sends[0].Ref,
		"the reposted embed must be handed back for deletion")

	_, err = repo.GetPlantation(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrPlantationNotFound)
}

func TestTick_CooldownDMFailureRetries(t *testing.T) {
	f := newFixture(t)

	task, err := f.repo.ReplaceTask(context.Background(), domain.CooldownTask{
		OwnerID:     "user-1",
		Kind:        domain.TaskTrabajo,
		CreatedAt:   f.now.Add(-time.Hour),
		DMChannelID: "dm-1",
		ReadyAt:     f.now.Add(-time.Second),
	})
	require.NoError(t, err)

	f.messenger.sendErr = errors.New("dm closed")
	f.tick(t)

	stored, err := f.repo.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)

	f.messenger.sendErr = nil
	f.tick(t)

	require.Len(t, f.messenger.sends, 1)
	stored, err = f.repo.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
}
