package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/grabtik/grabtik-bot/internal/model"
)

const invoicePayloadPrefix = "premium:"

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Send a TikTok link to download it.")
		return nil
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.accounts.GetOrCreate(ctx, msg.From.ID, msg.From.UserName); err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, "📥 Send a TikTok link to download it")
	out.ReplyMarkup = mainKeyboard(msg.From.ID == b.opts.AdminID)
	if _, err := b.api.Send(out); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	return nil
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case buttonAccount:
		return b.showAccount(ctx, msg)
	case buttonPremium:
		return b.showPremium(msg)
	case buttonAdmin:
		if userID == b.opts.AdminID {
			b.showAdmin(msg)
		}
		return nil
	case buttonStats:
		if userID == b.opts.AdminID {
			return b.showStats(ctx, msg)
		}
		return nil
	case buttonAddAd:
		if userID == b.opts.AdminID {
			b.setAdminMode(userID, "add_ad")
			b.reply(msg.Chat.ID, "Send the ad link")
		}
		return nil
	case buttonDeleteAd:
		if userID == b.opts.AdminID {
			b.setAdminMode(userID, "delete_ad")
			b.reply(msg.Chat.ID, "Send the ad id")
		}
		return nil
	case buttonListAds:
		if userID == b.opts.AdminID {
			return b.listAds(ctx, msg)
		}
		return nil
	case buttonBack:
		out := tgbotapi.NewMessage(msg.Chat.ID, "Main menu")
		out.ReplyMarkup = mainKeyboard(userID == b.opts.AdminID)
		_, err := b.api.Send(out)
		return err
	}

	if userID == b.opts.AdminID {
		switch b.takeAdminMode(userID) {
		case "add_ad":
			return b.addAd(ctx, msg, text)
		case "delete_ad":
			return b.deleteAd(ctx, msg, text)
		}
	}

	if link := linkRegex.FindString(text); link != "" {
		return b.handleLink(ctx, msg, link)
	}

	b.reply(msg.Chat.ID, "Send a TikTok link to download it.")
	return nil
}

func (b *Bot) showAccount(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.accounts.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	status := "Free"
	if user.Premium {
		status = "Premium ⭐"
		if user.PremiumExpiry != nil {
			status += " until " + user.PremiumExpiry.Format("2006-01-02")
		}
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"👤 Account\n\nID: %d\nStatus: %s\nDownloads: %d",
		user.ID, status, user.DownloadCount,
	))
	return nil
}

func (b *Bot) showPremium(msg *tgbotapi.Message) error {
	out := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"⭐ Premium Plan\n\n"+
			"• No ads\n"+
			"• Instant downloads\n"+
			"• Priority speed\n\n"+
			"Price: %d Stars / month",
		b.opts.PriceStars,
	))
	out.ReplyMarkup = premiumKeyboard(b.opts.PriceStars)
	_, err := b.api.Send(out)
	return err
}

func (b *Bot) showAdmin(msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.Chat.ID, "🛠 Admin panel")
	out.ReplyMarkup = adminKeyboard()
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("bot: failed to send admin panel", "error", err.Error())
	}
}

func (b *Bot) showStats(ctx context.Context, msg *tgbotapi.Message) error {
	total, premium, err := b.accounts.Stats(ctx)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"📊 Bot statistics\n\n👥 Total users: %d\n⭐ Premium users: %d",
		total, premium,
	))
	return nil
}

func (b *Bot) addAd(ctx context.Context, msg *tgbotapi.Message, url string) error {
	ad, err := b.ads.Add(ctx, url)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Ad %d added", ad.ID))
	return nil
}

func (b *Bot) deleteAd(ctx context.Context, msg *tgbotapi.Message, raw string) error {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "That is not an ad id.")
		return nil
	}

	if err := b.ads.Remove(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			b.reply(msg.Chat.ID, "No ad with that id.")
			return nil
		}
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	b.reply(msg.Chat.ID, "✅ Ad deleted")
	return nil
}

func (b *Bot) listAds(ctx context.Context, msg *tgbotapi.Message) error {
	ads, err := b.ads.List(ctx)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	if len(ads) == 0 {
		b.reply(msg.Chat.ID, "No ads configured.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📋 Ads\n\n")
	for _, ad := range ads {
		state := "off"
		if ad.Active {
			state = "on"
		}
		fmt.Fprintf(&sb, "%d [%s] %s\n", ad.ID, state, ad.URL)
	}

	b.reply(msg.Chat.ID, sb.String())
	return nil
}

// handleLink runs the extraction flow: rate-limit check, progress message,
// extraction call, then the format menu.
func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message, link string) error {
	userID := msg.From.ID

	if remaining := b.limiter.CheckAndStamp(userID, time.Now()); remaining > 0 {
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"⏳ Please wait %d seconds before the next request.",
			int(remaining.Seconds()+0.5),
		))
		return nil
	}

	progress, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⏳ Processing"))
	if err != nil {
		return fmt.Errorf("failed to send progress message: %w", err)
	}

	animCtx, stopAnim := context.WithCancel(ctx)
	animDone := make(chan struct{})
	go func() {
		defer close(animDone)
		b.animateProgress(animCtx, msg.Chat.ID, progress.MessageID)
	}()

	desc, err := b.extractor.Fetch(ctx, link)

	// Join on the animator before touching the progress message again, so
	// an in-flight frame edit cannot land on top of the result.
	stopAnim()
	<-animDone
	if err != nil {
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, progress.MessageID, userMessage(err))
		if _, sendErr := b.api.Send(edit); sendErr != nil {
			b.logger.Error("bot: failed to edit progress message", "error", sendErr.Error())
		}
		return err
	}

	b.sessions.Store(userID, desc)

	title := desc.Title
	if title == "" {
		title = "Choose a format:"
	} else {
		title += "\n\nChoose a format:"
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, progress.MessageID, title, formatKeyboard(desc))
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("failed to show format menu: %w", err)
	}

	return nil
}

// animateProgress cycles the pending message through dot frames until
// cancelled. The caller waits for it to return before editing the message
// again.
func (b *Bot) animateProgress(ctx context.Context, chatID int64, messageID int) {
	frames := []string{"⏳ Processing.", "⏳ Processing..", "⏳ Processing..."}
	ticker := time.NewTicker(b.animInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		edit := tgbotapi.NewEditMessageText(chatID, messageID, frames[i%len(frames)])
		if _, err := b.api.Send(edit); err != nil {
			return
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Error("bot: failed to answer callback", "error", err.Error())
	}

	data := query.Data
	switch {
	case data == "buy_premium":
		return b.sendInvoice(query)
	case strings.HasPrefix(data, "fmt:"):
		return b.handleFormatChoice(ctx, query, model.Format(strings.TrimPrefix(data, "fmt:")))
	case strings.HasPrefix(data, "go:"):
		return b.handleAdContinue(ctx, query, strings.TrimPrefix(data, "go:"))
	}

	return nil
}

// handleFormatChoice runs the initial gate transition for a format pick.
func (b *Bot) handleFormatChoice(ctx context.Context, query *tgbotapi.CallbackQuery, format model.Format) error {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	user, err := b.accounts.GetOrCreate(ctx, userID, query.From.UserName)
	if err != nil {
		b.reply(chatID, userMessage(err))
		return err
	}

	sess, err := b.sessions.SetFormat(userID, format)
	if err != nil {
		b.reply(chatID, userMessage(err))
		return nil
	}

	decision := b.gate.Evaluate(ctx, user, sess)
	switch decision.State {
	case model.GateGranted:
		return b.release(ctx, chatID, userID, decision.Generation)

	case model.GatePendingAdClick:
		out := tgbotapi.NewMessage(chatID, "👀 Check out our sponsor, then hit Continue to get your file.")
		out.ReplyMarkup = adGateKeyboard(decision.AdURL, decision.Generation)
		if _, err := b.api.Send(out); err != nil {
			return fmt.Errorf("failed to present ad gate: %w", err)
		}
		return nil

	case model.GatePendingTimer:
		b.reply(chatID, fmt.Sprintf("⏳ Your download unlocks in %d seconds.", int(decision.Delay.Seconds())))
		b.gate.ScheduleRelease(ctx, userID, decision.Generation,
			func(ctx context.Context, sess model.MediaSession) {
				b.deliver(chatID, sess)
			},
			func(context.Context) {
				b.reply(chatID, userMessage(model.ErrSessionExpired))
			},
		)
		return nil
	}

	return nil
}

func (b *Bot) handleAdContinue(ctx context.Context, query *tgbotapi.CallbackQuery, rawGen string) error {
	generation, err := strconv.ParseUint(rawGen, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed continue callback %q: %w", query.Data, err)
	}

	chatID := query.Message.Chat.ID

	sess, err := b.gate.ContinueAd(ctx, query.From.ID, generation)
	if err != nil {
		b.reply(chatID, userMessage(err))
		return nil
	}

	b.deliver(chatID, sess)
	return nil
}

func (b *Bot) release(ctx context.Context, chatID, userID int64, generation uint64) error {
	sess, err := b.gate.Release(ctx, userID, generation)
	if err != nil {
		b.reply(chatID, userMessage(err))
		return nil
	}

	b.deliver(chatID, sess)
	return nil
}

// deliver sends the chosen asset. Telegram fetches the remote URL itself.
func (b *Bot) deliver(chatID int64, sess model.MediaSession) {
	switch sess.Format {
	case model.FormatAudio:
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileURL(sess.Media.AudioURL))
		audio.Caption = sess.Media.Title
		if _, err := b.api.Send(audio); err != nil {
			b.logger.Error("bot: failed to send audio", "chat_id", chatID, "error", err.Error())
			b.reply(chatID, userMessage(err))
		}

	case model.FormatImages:
		b.deliverImages(chatID, sess.Media.ImageURLs)

	case model.FormatVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(sess.Media.VideoURL))
		video.Caption = sess.Media.Title
		if _, err := b.api.Send(video); err != nil {
			b.logger.Error("bot: failed to send video", "chat_id", chatID, "error", err.Error())
			b.reply(chatID, userMessage(err))
		}

	default:
		b.logger.Error("bot: session has no deliverable format", "chat_id", chatID, "format", string(sess.Format))
		b.reply(chatID, userMessage(model.ErrFormatUnavailable))
	}
}

// deliverImages sends the slideshow in media groups of at most ten photos,
// the Telegram per-group limit.
func (b *Bot) deliverImages(chatID int64, urls []string) {
	for start := 0; start < len(urls); start += 10 {
		end := min(start+10, len(urls))

		var media []interface{}
		for _, u := range urls[start:end] {
			media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(u)))
		}

		group := tgbotapi.NewMediaGroup(chatID, media)
		if _, err := b.api.SendMediaGroup(group); err != nil {
			b.logger.Error("bot: failed to send media group", "chat_id", chatID, "error", err.Error())
			b.reply(chatID, userMessage(err))
			return
		}
	}
}

func (b *Bot) sendInvoice(query *tgbotapi.CallbackQuery) error {
	payload := invoicePayloadPrefix + uuid.NewString()

	invoice := tgbotapi.NewInvoice(
		query.From.ID,
		"Premium Bot",
		"Premium active for 30 days",
		payload,
		"", // Stars invoices carry no provider token
		"premium",
		"XTR",
		[]tgbotapi.LabeledPrice{{Label: b.opts.PlanLabel, Amount: b.opts.PriceStars}},
	)

	if _, err := b.api.Send(invoice); err != nil {
		return fmt.Errorf("failed to send invoice: %w", err)
	}

	return nil
}

func (b *Bot) handlePreCheckout(ctx context.Context, query *tgbotapi.PreCheckoutQuery) error {
	ok := strings.HasPrefix(query.InvoicePayload, invoicePayloadPrefix)

	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: query.ID,
		OK:                 ok,
	}
	if !ok {
		answer.ErrorMessage = "Unknown invoice"
	}

	if _, err := b.api.Request(answer); err != nil {
		return fmt.Errorf("failed to answer pre-checkout: %w", err)
	}

	return nil
}

func (b *Bot) handlePayment(ctx context.Context, msg *tgbotapi.Message) error {
	sp := msg.SuccessfulPayment
	if !strings.HasPrefix(sp.InvoicePayload, invoicePayloadPrefix) {
		return nil
	}

	// The payer may never have talked to the bot before paying. The grant
	// updates an existing account row, so make sure one exists.
	if _, err := b.accounts.GetOrCreate(ctx, msg.From.ID, msg.From.UserName); err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		return err
	}

	payment := model.Payment{
		ChargeID: sp.TelegramPaymentChargeID,
		UserID:   msg.From.ID,
		Provider: "telegram-stars",
		Payload:  sp.InvoicePayload,
		Currency: sp.Currency,
		Amount:   int64(sp.TotalAmount),
	}

	expiry, err := b.subs.Confirm(ctx, payment)
	if err != nil {
		b.reply(msg.Chat.ID, userMessage(err))
		if errors.Is(err, model.ErrDuplicatePayment) {
			return nil
		}
		return err
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Premium active until %s", expiry.Format("2006-01-02")))
	return nil
}
