package bot

import (
	"errors"

	"github.com/grabtik/grabtik-bot/internal/model"
)

// userMessage converts a domain error into the short message shown to the
// user. Unexpected errors map to a generic line; internal detail never
// leaks into the chat.
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrSessionExpired):
		return "⌛ Session expired, resend the link."
	case errors.Is(err, model.ErrFormatUnavailable):
		return "❌ That format is not available for this link."
	case errors.Is(err, model.ErrExtractionFailed):
		return "❌ Could not fetch media from that link. Check the link and try again."
	case errors.Is(err, model.ErrStoreUnavailable):
		return "⚠️ Service is temporarily unavailable, please try again later."
	case errors.Is(err, model.ErrDuplicatePayment):
		return "⭐ This payment was already applied, premium is active."
	default:
		return "⚠️ An error occurred, please try again."
	}
}
