package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
)

// GateDecision is the outcome of evaluating a format selection. It is
// ephemeral; nothing persists it.
type GateDecision struct {
	State model.GateState
	// AdURL is set when State is GatePendingAdClick.
	AdURL string
	// Delay is set when State is GatePendingTimer.
	Delay time.Duration
	// Generation identifies the session the pending release belongs to.
	Generation uint64
}

// Gate decides whether a pending download is released immediately, after a
// timer, or after an ad interaction, and performs the release itself.
//
// Premium users and first downloads are never gated; everyone else goes
// through the deployment's configured mode.
type Gate struct {
	mode     model.GateMode
	delay    time.Duration
	accounts *Accounts
	sessions *Sessions
	ads      *Ads
	logger   *logger.Logger
}

// NewGate creates the gate engine. delay is the timed-mode release delay.
func NewGate(
	mode model.GateMode,
	delay time.Duration,
	accounts *Accounts,
	sessions *Sessions,
	ads *Ads,
	logger *logger.Logger,
) *Gate {
	return &Gate{
		mode:     mode,
		delay:    delay,
		accounts: accounts,
		sessions: sessions,
		ads:      ads,
		logger:   logger,
	}
}

// Evaluate runs the initial gate transition for a format selection against
// a freshly extracted session.
func (g *Gate) Evaluate(ctx context.Context, user model.User, sess model.MediaSession) GateDecision {
	if user.Premium {
		return GateDecision{State: model.GateGranted, Generation: sess.Generation}
	}

	// First download is always free.
	if user.DownloadCount == 0 {
		return GateDecision{State: model.GateGranted, Generation: sess.Generation}
	}

	switch g.mode {
	case model.GateModeTimed:
		return GateDecision{
			State:      model.GatePendingTimer,
			Delay:      g.delay,
			Generation: sess.Generation,
		}
	default:
		return GateDecision{
			State:      model.GatePendingAdClick,
			AdURL:      g.ads.PickURL(ctx),
			Generation: sess.Generation,
		}
	}
}

// Release consumes the session identified by generation and counts the
// download. A session that was superseded or already consumed resolves to
// ErrSessionExpired; this is terminal, the user must resend the link.
func (g *Gate) Release(ctx context.Context, owner int64, generation uint64) (model.MediaSession, error) {
	sess, err := g.sessions.Take(owner, generation)
	if err != nil {
		g.logger.Info("gate: release found no current session",
			"user_id", owner,
			"generation", generation)
		return model.MediaSession{}, model.ErrSessionExpired
	}

	if err := g.accounts.RegisterDownload(ctx, owner); err != nil {
		return model.MediaSession{}, fmt.Errorf("failed to count download: %w", err)
	}

	g.logger.Info("gate: download released",
		"user_id", owner,
		"format", string(sess.Format),
		"generation", generation)

	return sess, nil
}

// ContinueAd releases the download after the user invoked the continue
// action on the presented ad. There is no verification that the ad was
// actually viewed; continue grants unconditionally.
func (g *Gate) ContinueAd(ctx context.Context, owner int64, generation uint64) (model.MediaSession, error) {
	return g.Release(ctx, owner, generation)
}

// ScheduleRelease starts the timed-mode deferred release. When the delay
// elapses the session is released and handed to deliver; a session
// superseded in the meantime invokes expired instead. The timer
// self-invalidates through the generation check, it is never cancelled
// explicitly.
func (g *Gate) ScheduleRelease(
	ctx context.Context,
	owner int64,
	generation uint64,
	deliver func(context.Context, model.MediaSession),
	expired func(context.Context),
) {
	go func() {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		sess, err := g.Release(ctx, owner, generation)
		if err != nil {
			if errors.Is(err, model.ErrSessionExpired) {
				expired(ctx)
			} else {
				g.logger.Error("gate: timed release failed",
					"user_id", owner,
					"error", err.Error())
			}
			return
		}

		deliver(ctx, sess)
	}()
}
