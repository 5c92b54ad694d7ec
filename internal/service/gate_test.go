package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grabtik/grabtik-bot/internal/mocks"
	"github.com/grabtik/grabtik-bot/internal/model"
	"github.com/grabtik/grabtik-bot/internal/testutil"
)

func makeGate(t *testing.T, mode model.GateMode, delay time.Duration, users *mocks.UserStore, ads *mocks.AdStore) (*Gate, *Sessions) {
	t.Helper()

	log := testutil.MakeNoopLogger()
	sessions := NewSessions()
	gate := NewGate(mode, delay, NewAccounts(users, log), sessions, NewAds(ads, log), log)

	return gate, sessions
}

func TestGate_Evaluate_PremiumGranted(t *testing.T) {
	gate, sessions := makeGate(t, model.GateModeAd, 0, &mocks.UserStore{}, &mocks.AdStore{})
	gen := sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})
	sess, _ := sessions.Peek(1)

	d := gate.Evaluate(testContext(t), model.User{ID: 1, Premium: true, DownloadCount: 9}, sess)

	assert.Equal(t, model.GateGranted, d.State)
	assert.Equal(t, gen, d.Generation)
}

func TestGate_Evaluate_FirstDownloadFree(t *testing.T) {
	gate, sessions := makeGate(t, model.GateModeAd, 0, &mocks.UserStore{}, &mocks.AdStore{})
	sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})
	sess, _ := sessions.Peek(1)

	d := gate.Evaluate(testContext(t), model.User{ID: 1, DownloadCount: 0}, sess)

	assert.Equal(t, model.GateGranted, d.State)
	assert.Empty(t, d.AdURL)
}

func TestGate_Evaluate_AdMode(t *testing.T) {
	ads := &mocks.AdStore{}
	ads.On("PickActive", mock.Anything).Return(model.Ad{URL: "https://ads.example.com/x"}, nil)

	gate, sessions := makeGate(t, model.GateModeAd, 0, &mocks.UserStore{}, ads)
	sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})
	sess, _ := sessions.Peek(1)

	d := gate.Evaluate(testContext(t), model.User{ID: 1, DownloadCount: 1}, sess)

	assert.Equal(t, model.GatePendingAdClick, d.State)
	assert.Equal(t, "https://ads.example.com/x", d.AdURL)
}

func TestGate_Evaluate_AdModeFallbackURL(t *testing.T) {
	ads := &mocks.AdStore{}
	ads.On("PickActive", mock.Anything).Return(model.Ad{}, model.ErrNotFound)

	gate, sessions := makeGate(t, model.GateModeAd, 0, &mocks.UserStore{}, ads)
	sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})
	sess, _ := sessions.Peek(1)

	d := gate.Evaluate(testContext(t), model.User{ID: 1, DownloadCount: 1}, sess)

	assert.Equal(t, model.GatePendingAdClick, d.State)
	assert.Equal(t, fallbackAdURL, d.AdURL)
}

func TestGate_Evaluate_TimedMode(t *testing.T) {
	gate, sessions := makeGate(t, model.GateModeTimed, 10*time.Second, &mocks.UserStore{}, &mocks.AdStore{})
	sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})
	sess, _ := sessions.Peek(1)

	d := gate.Evaluate(testContext(t), model.User{ID: 1, DownloadCount: 1}, sess)

	assert.Equal(t, model.GatePendingTimer, d.State)
	assert.Equal(t, 10*time.Second, d.Delay)
}

func TestGate_ContinueAd_DeliversAndCounts(t *testing.T) {
	users := &mocks.UserStore{}
	users.On("IncrementDownloads", mock.Anything, int64(1)).Return(nil)

	gate, sessions := makeGate(t, model.GateModeAd, 0, users, &mocks.AdStore{})
	gen := sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})
	_, err := sessions.SetFormat(1, model.FormatVideo)
	require.NoError(t, err)

	sess, err := gate.ContinueAd(testContext(t), 1, gen)
	require.NoError(t, err)
	assert.Equal(t, model.FormatVideo, sess.Format)
	assert.Equal(t, "https://v/1", sess.Media.VideoURL)
	users.AssertExpectations(t)

	// The session was consumed; a second continue is expired.
	_, err = gate.ContinueAd(testContext(t), 1, gen)
	assert.ErrorIs(t, err, model.ErrSessionExpired)
}

func TestGate_Release_SupersededSessionExpires(t *testing.T) {
	users := &mocks.UserStore{}

	gate, sessions := makeGate(t, model.GateModeAd, 0, users, &mocks.AdStore{})
	stale := sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/old"})
	sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/new"})

	_, err := gate.Release(testContext(t), 1, stale)
	assert.ErrorIs(t, err, model.ErrSessionExpired)
	// No asset delivered means no counter increment.
	users.AssertNotCalled(t, "IncrementDownloads", mock.Anything, mock.Anything)
}

func TestGate_ScheduleRelease_DeliversAfterDelay(t *testing.T) {
	users := &mocks.UserStore{}
	users.On("IncrementDownloads", mock.Anything, int64(1)).Return(nil)

	gate, sessions := makeGate(t, model.GateModeTimed, 10*time.Millisecond, users, &mocks.AdStore{})
	gen := sessions.Store(1, model.MediaDescriptor{AudioURL: "https://a/1"})

	delivered := make(chan model.MediaSession, 1)
	gate.ScheduleRelease(testContext(t), 1, gen,
		func(_ context.Context, sess model.MediaSession) { delivered <- sess },
		func(context.Context) { t.Error("unexpected expiry") },
	)

	select {
	case sess := <-delivered:
		assert.Equal(t, "https://a/1", sess.Media.AudioURL)
	case <-time.After(time.Second):
		t.Fatal("timed release never fired")
	}
}

func TestGate_ScheduleRelease_SupersededTimerExpires(t *testing.T) {
	users := &mocks.UserStore{}

	gate, sessions := makeGate(t, model.GateModeTimed, 10*time.Millisecond, users, &mocks.AdStore{})
	gen := sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/old"})

	// A newer extraction lands while the timer is pending.
	sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/new"})

	expired := make(chan struct{}, 1)
	gate.ScheduleRelease(testContext(t), 1, gen,
		func(context.Context, model.MediaSession) { t.Error("stale timer must not deliver") },
		func(context.Context) { expired <- struct{}{} },
	)

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("stale timer never resolved")
	}
	users.AssertNotCalled(t, "IncrementDownloads", mock.Anything, mock.Anything)
}

func TestGate_ScheduleRelease_CancelledContext(t *testing.T) {
	users := &mocks.UserStore{}

	gate, sessions := makeGate(t, model.GateModeTimed, time.Hour, users, &mocks.AdStore{})
	gen := sessions.Store(1, model.MediaDescriptor{VideoURL: "https://v/1"})

	ctx, cancel := context.WithCancel(testContext(t))
	gate.ScheduleRelease(ctx, 1, gen,
		func(context.Context, model.MediaSession) { t.Error("cancelled timer must not deliver") },
		func(context.Context) { t.Error("cancelled timer must not report expiry") },
	)
	cancel()

	// The session is untouched by the cancelled timer.
	time.Sleep(50 * time.Millisecond)
	_, err := sessions.Peek(1)
	require.NoError(t, err)
}
