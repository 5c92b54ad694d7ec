package service

import (
	"sync"
	"time"

	"github.com/grabtik/grabtik-bot/internal/model"
)

// Sessions holds at most one pending media session per user between
// extraction and delivery. Every Store bumps a generation counter; a
// pending release made against an older generation finds its session gone.
type Sessions struct {
	mu       sync.Mutex
	sessions map[int64]model.MediaSession
	gen      uint64
}

// NewSessions creates an empty session manager.
func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[int64]model.MediaSession),
	}
}

// Store replaces any existing session for the owner with a fresh one and
// returns its generation. Last write wins under rapid-fire input.
func (s *Sessions) Store(owner int64, media model.MediaDescriptor) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.sessions[owner] = model.MediaSession{
		Owner:      owner,
		Media:      media,
		Generation: s.gen,
		CreatedAt:  time.Now(),
	}

	return s.gen
}

// Peek returns the owner's current session without consuming it. Used for
// format-menu rendering.
func (s *Sessions) Peek(owner int64) (model.MediaSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return model.MediaSession{}, model.ErrSessionExpired
	}

	return sess, nil
}

// SetFormat records the user's format choice on the current session and
// returns the updated session. Callback data is client-supplied, so a
// format the media does not carry is rejected and the session kept intact.
func (s *Sessions) SetFormat(owner int64, format model.Format) (model.MediaSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return model.MediaSession{}, model.ErrSessionExpired
	}
	if !sess.Media.HasFormat(format) {
		return model.MediaSession{}, model.ErrFormatUnavailable
	}

	sess.Format = format
	s.sessions[owner] = sess

	return sess, nil
}

// Take consumes the owner's session if it still carries the given
// generation. A missing session or a generation mismatch means the pending
// release was superseded and resolves to ErrSessionExpired.
func (s *Sessions) Take(owner int64, generation uint64) (model.MediaSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok || sess.Generation != generation {
		return model.MediaSession{}, model.ErrSessionExpired
	}

	delete(s.sessions, owner)

	return sess, nil
}
