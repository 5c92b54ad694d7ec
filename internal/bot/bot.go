// Package bot is the Telegram transport boundary: it turns inbound updates
// into service calls and converts every failure into a short user-visible
// message. No failure propagates out of the update loop.
package bot

import (
	"context"
	"regexp"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
	"github.com/grabtik/grabtik-bot/internal/service"
)

var linkRegex = regexp.MustCompile(`https?://[^\s]*tiktok\.com[^\s]*`)

// api is the subset of tgbotapi.BotAPI the handlers use. Narrowed so tests
// can substitute a recording fake.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// mediaExtractor resolves a shared link into a media descriptor.
type mediaExtractor interface {
	Fetch(ctx context.Context, link string) (model.MediaDescriptor, error)
}

// Options carries the transport-level knobs.
type Options struct {
	AdminID    int64
	PriceStars int
	PlanLabel  string
}

// Bot wires the update loop to the services.
type Bot struct {
	api       api
	accounts  *service.Accounts
	subs      *service.Subscriptions
	gate      *service.Gate
	sessions  *service.Sessions
	limiter   *service.RateLimiter
	ads       *service.Ads
	extractor mediaExtractor
	opts      Options
	logger    *logger.Logger

	// animInterval is the progress animation frame period.
	animInterval time.Duration

	// adminMode tracks which admin input the operator's next message
	// answers ("add_ad" or "delete_ad"). Explicit per-user state, not a
	// dynamic bag.
	mu        sync.Mutex
	adminMode map[int64]string
}

// New creates the bot on top of an authorized tgbotapi client.
func New(
	tg api,
	accounts *service.Accounts,
	subs *service.Subscriptions,
	gate *service.Gate,
	sessions *service.Sessions,
	limiter *service.RateLimiter,
	ads *service.Ads,
	extractor mediaExtractor,
	opts Options,
	logger *logger.Logger,
) *Bot {
	return &Bot{
		api:          tg,
		accounts:     accounts,
		subs:         subs,
		gate:         gate,
		sessions:     sessions,
		limiter:      limiter,
		ads:          ads,
		extractor:    extractor,
		opts:         opts,
		logger:       logger,
		animInterval: 700 * time.Millisecond,
		adminMode:    make(map[int64]string),
	}
}

// Run consumes updates until ctx is cancelled. Each update is handled in
// its own goroutine so a slow extraction or a pending timed release never
// blocks the loop.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	b.logger.Info("bot: update loop started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot: update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("bot: update channel closed")
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		b.instrument("pre_checkout", update.PreCheckoutQuery.From.ID, func() error {
			return b.handlePreCheckout(ctx, update.PreCheckoutQuery)
		})
	case update.CallbackQuery != nil:
		b.instrument("callback", update.CallbackQuery.From.ID, func() error {
			return b.handleCallback(ctx, update.CallbackQuery)
		})
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		b.instrument("payment", update.Message.From.ID, func() error {
			return b.handlePayment(ctx, update.Message)
		})
	case update.Message != nil && update.Message.IsCommand():
		b.instrument("command", update.Message.From.ID, func() error {
			return b.handleCommand(ctx, update.Message)
		})
	case update.Message != nil && update.Message.Text != "":
		b.instrument("message", update.Message.From.ID, func() error {
			return b.handleText(ctx, update.Message)
		})
	}
}

func (b *Bot) setAdminMode(id int64, mode string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mode == "" {
		delete(b.adminMode, id)
		return
	}
	b.adminMode[id] = mode
}

func (b *Bot) takeAdminMode(id int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	mode := b.adminMode[id]
	delete(b.adminMode, id)
	return mode
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("bot: failed to send message", "chat_id", chatID, "error", err.Error())
	}
}
