package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/shelf/internal/timer"
)

func TestKind(t *testing.T) {
	assert.Equal(t, "info", KindInfo.String())
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "error", KindError.String())
	assert.Equal(t, "✅", KindSuccess.Icon())
	assert.Equal(t, "⚠️", KindError.Icon())
	assert.Equal(t, "ℹ️", KindInfo.Icon())
}

func TestChannel_Notify(t *testing.T) {
	t.Run("shows notice and schedules fade", func(t *testing.T) {
		sched := timer.NewManual()
		ch := New(sched)

		ch.Notify("Added", KindSuccess)

		latest, ok := ch.Latest()
		require.True(t, ok)
		assert.Equal(t, "Added", latest.Message)
		assert.Equal(t, KindSuccess, latest.Kind)
		assert.False(t, latest.Fading)

		pending := sched.Pending()
		require.Len(t, pending, 1)
		assert.Equal(t, DefaultTTL, pending[0].Delay)
		assert.Equal(t, FadeMsg{ID: latest.ID}, pending[0].Msg)
	})

	t.Run("stacks without dedup", func(t *testing.T) {
		ch := New(timer.NewManual())

		ch.Info("same")
		ch.Info("same")

		assert.Equal(t, 2, ch.Len())
		notices := ch.Notices()
		assert.NotEqual(t, notices[0].ID, notices[1].ID)
	})

	t.Run("nil channel is a sink", func(t *testing.T) {
		var ch *Channel
		assert.NotPanics(t, func() {
			assert.Nil(t, ch.Notify("dropped", KindError))
			assert.Zero(t, ch.Len())
			assert.Nil(t, ch.Notices())
		})
	})

	t.Run("respects configured ttl", func(t *testing.T) {
		sched := timer.NewManual()
		ch := New(sched, WithTTL(time.Second))

		ch.Error("boom")

		assert.Equal(t, time.Second, sched.Pending()[0].Delay)
	})
}

func TestChannel_FadeThenRemove(t *testing.T) {
	sched := timer.NewManual()
	ch := New(sched, WithFade(100*time.Millisecond))
	ch.Info("first")
	ch.Info("second")

	// ttl elapses: both notices start fading but stay visible
	for _, msg := range sched.Fire(DefaultTTL) {
		_, handled := ch.Update(msg)
		assert.True(t, handled)
	}
	require.Equal(t, 2, ch.Len())
	for _, n := range ch.Notices() {
		assert.True(t, n.Fading)
	}

	// fade completes: notices are removed
	expires := sched.Fire(100 * time.Millisecond)
	require.Len(t, expires, 2)
	for _, msg := range expires {
		ch.Update(msg)
	}
	assert.Zero(t, ch.Len())
}

func TestChannel_Dismiss(t *testing.T) {
	sched := timer.NewManual()
	ch := New(sched)
	ch.Info("first")
	ch.Error("second")

	require.True(t, ch.Dismiss())
	got, ok := ch.Latest()
	require.True(t, ok)
	assert.Equal(t, "first", got.Message)

	// the dismissed notice's timers no longer touch the stack
	for _, msg := range sched.FireAll() {
		_, handled := ch.Update(msg)
		assert.True(t, handled)
	}
	assert.Equal(t, 1, ch.Len())

	require.True(t, ch.Dismiss())
	assert.False(t, ch.Dismiss())
	assert.Zero(t, ch.Len())
}

func TestChannel_Update(t *testing.T) {
	t.Run("ignores foreign messages", func(t *testing.T) {
		ch := New(timer.NewManual())
		cmd, handled := ch.Update("not a notice message")
		assert.Nil(t, cmd)
		assert.False(t, handled)
	})

	t.Run("unknown ids are consumed", func(t *testing.T) {
		ch := New(timer.NewManual())
		_, handled := ch.Update(FadeMsg{ID: "gone"})
		assert.True(t, handled)
		_, handled = ch.Update(ExpireMsg{ID: "gone"})
		assert.True(t, handled)
	})

	t.Run("without scheduler fade removes immediately", func(t *testing.T) {
		ch := New(nil)
		ch.Info("x")
		n, _ := ch.Latest()

		ch.Update(FadeMsg{ID: n.ID})
		assert.Zero(t, ch.Len())
	})
}

func TestChannel_CreatedAt(t *testing.T) {
	ch := New(timer.NewManual())

	before := time.Now()
	ch.Success("ok")
	after := time.Now()

	n, _ := ch.Latest()
	assert.False(t, n.CreatedAt.Before(before))
	assert.False(t, n.CreatedAt.After(after))
}
