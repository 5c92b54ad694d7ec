package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/grabtik/grabtik-bot/internal/bot"
	"github.com/grabtik/grabtik-bot/internal/config"
	"github.com/grabtik/grabtik-bot/internal/extractor"
	"github.com/grabtik/grabtik-bot/internal/logger"
	"github.com/grabtik/grabtik-bot/internal/model"
	"github.com/grabtik/grabtik-bot/internal/repository/postgres"
	"github.com/grabtik/grabtik-bot/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	adRepo := postgres.NewAdRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	accounts := service.NewAccounts(userRepo, logger)
	sessions := service.NewSessions()
	ads := service.NewAds(adRepo, logger)
	limiter := service.NewRateLimiter(cfg.Gate.RateLimitWindow)
	subscriptions := service.NewSubscriptions(paymentRepo, cfg.Premium.Duration, logger)

	mode := model.GateMode(cfg.Gate.Mode)
	if mode != model.GateModeAd && mode != model.GateModeTimed {
		logger.Fatal("unknown gate mode", "mode", cfg.Gate.Mode)
	}
	gate := service.NewGate(mode, cfg.Gate.TimedDelay, accounts, sessions, ads, logger)

	extractorClient := extractor.NewClient(cfg.Extractor.BaseURL, cfg.Extractor.Timeout, logger)

	tg, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatal("failed to create telegram client", "error", err)
	}
	logger.Info("authorized on telegram", "account", tg.Self.UserName)

	b := bot.New(tg, accounts, subscriptions, gate, sessions, limiter, ads, extractorClient,
		bot.Options{
			AdminID:    cfg.Bot.AdminID,
			PriceStars: cfg.Premium.PriceStars,
			PlanLabel:  "Premium 1 month",
		}, logger.With("component", "bot"))

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 60
	updates := tg.GetUpdatesChan(updateCfg)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Run(ctx, updates)
	}()

	logger.Info("bot started",
		"gate_mode", string(mode),
		"build_version", buildVersion,
		"build_date", buildDate)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	tg.StopReceivingUpdates()
	wg.Wait()
	logger.Info("shutdown complete")
}
