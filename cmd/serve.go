package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytassist/internal/bot"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve connects to Telegram and handles playlist requests until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	token := r.config.Credentials.Telegram.Token
	if token == "" {
		return fmt.Errorf("%w: telegram bot token (TELEGRAM_BOT_TOKEN)", shared.ErrMissingCredentials)
	}

	api, err := bot.NewTelegramAPI(token)
	if err != nil {
		return err
	}
	r.logger.Info("authorized on telegram", "username", api.Self.UserName)

	return r.serve(ctx, api, api.Self.UserName)
}

func (r *Runner) serve(ctx context.Context, api bot.BotAPI, username string) error {
	cfg := r.config.Bot
	b := bot.New(bot.Opts{
		API:        api,
		Username:   username,
		Runner:     r.orchestrator(ctx, true),
		Command:    cfg.Command,
		Cooldown:   time.Duration(cfg.CooldownSeconds) * time.Second,
		Workers:    cfg.Workers,
		QueueSize:  cfg.QueueSize,
		GroupsOnly: cfg.GroupsOnly,
		Logger:     r.logger,
	})
	return b.Run(ctx)
}
