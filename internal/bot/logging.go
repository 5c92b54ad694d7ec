package bot

import "time"

// instrument runs one update handler and logs kind, duration and outcome.
// Handler errors are logged here and never propagate; the handler itself is
// responsible for telling the user.
func (b *Bot) instrument(kind string, userID int64, handler func() error) {
	start := time.Now()

	b.logger.Debug("bot: update started",
		"kind", kind,
		"user_id", userID)

	err := handler()

	b.logger.Info("bot: update completed",
		"kind", kind,
		"user_id", userID,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil)

	if err != nil {
		b.logger.Error("bot: update failed",
			"kind", kind,
			"user_id", userID,
			"error", err.Error())
	}
}
