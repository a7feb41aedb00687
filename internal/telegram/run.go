// Package telegram wires the wizard to the Telegram transport: bot
// construction, update routing, middleware, and lifecycle.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/xisscag-ops/rr4world/internal/config"
	"github.com/xisscag-ops/rr4world/internal/dispatch"
	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/logger"
	"github.com/xisscag-ops/rr4world/internal/session"
	"github.com/xisscag-ops/rr4world/internal/telegram/middleware"
)

// App aggregates the components the bot runtime needs.
type App struct {
	Config *config.Config
	Store  session.Store
	Graph  *flow.Graph
}

// Run composes and runs the bot until the provided context is done.
func Run(ctx context.Context, app App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if app.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := app.Config

	poller := buildPoller(cfg)

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	buildTook := time.Since(buildStart)

	switch p := poller.(type) {
	case *tele.Webhook:
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	default:
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
		if err := deleteWebhook(cfg.Telegram.Token); err != nil {
			logger.TG.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("err", err.Error()),
			)
		}
	}

	gw := &gateway{bot: bot}
	disp := dispatch.New(gw, dispatch.Options{MaxRetries: 2})
	ctl := NewController(app.Graph, app.Store, disp, gw, cfg.Moderation.Recipients, cfg.Moderation.OfferURL)

	bot.Use(middleware.RecoverMiddleware)
	if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			exclude[strings.ToLower(t)] = struct{}{}
		}
		bot.Use(middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval: interval,
			Exclude:  exclude,
		}))
	}
	bot.Use(middleware.LoggerMiddleware)

	bot.Handle("/start", ctl.HandleStart)
	bot.Handle("/cancel", ctl.HandleCancel)
	bot.Handle(tele.OnText, ctl.HandleText)
	bot.Handle(tele.OnPhoto, ctl.HandlePhoto)

	if err := bot.SetCommands([]tele.Command{
		{Text: "/start", Description: "Создать пост"},
		{Text: "/cancel", Description: "Отменить создание поста"},
	}); err != nil {
		logger.TWire.Warn("set commands failed",
			slog.String("event", "register.commands.set_failed"),
			slog.String("err", err.Error()),
		)
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("recipients", len(cfg.Moderation.Recipients)),
	)

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-runDone:
		return nil
	}
}

func buildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}

// deleteWebhook drops a leftover webhook registration before long polling.
func deleteWebhook(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
