package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/desertthunder/ytassist/internal/tasks"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCommand   = "createplaylist"
	CommandHelp      = "Creates a YouTube playlist based on your prompt using AI."
	BusyMessage      = "I'm working on too many playlists right now. Please try again in a few minutes."
	cooldownTemplate = "Slow down! You can create another playlist in %d seconds."
)

var ErrUpdatesClosed = errors.New("telegram update stream closed")

// PlaylistRunner runs one prompt through the playlist pipeline.
//
// It is satisfied by *tasks.Orchestrator.
type PlaylistRunner interface {
	Run(ctx context.Context, req tasks.Request, responder tasks.Responder) (*tasks.RunResult, error)
}

// Opts configures [New].
type Opts struct {
	API        BotAPI
	Username   string // bot username without "@", used for mention triggers
	Runner     PlaylistRunner
	Command    string
	Cooldown   time.Duration
	Workers    int
	QueueSize  int
	GroupsOnly bool
	Logger     *log.Logger
}

// Bot long-polls Telegram and dispatches playlist requests to a worker pool.
type Bot struct {
	api        BotAPI
	username   string
	runner     PlaylistRunner
	command    string
	groupsOnly bool
	cooldown   *Cooldown
	pool       *Pool
	logger     *log.Logger
}

// New creates a bot from opts.
func New(opts Opts) *Bot {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	logger := shared.WithLogger(opts.Logger, "adapter", "telegram")

	return &Bot{
		api:        opts.API,
		username:   opts.Username,
		runner:     opts.Runner,
		command:    opts.Command,
		groupsOnly: opts.GroupsOnly,
		cooldown:   NewCooldown(opts.Cooldown),
		pool:       NewPool(opts.Workers, opts.QueueSize, logger),
		logger:     logger,
	}
}

// Run polls for updates until ctx is cancelled.
//
// On shutdown the update stream is stopped and queued runs are allowed to finish.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		b.logger.Warn("failed to delete webhook", "error", err)
	}

	cmd := tgbotapi.NewSetMyCommands(tgbotapi.BotCommand{Command: b.command, Description: CommandHelp})
	if _, err := b.api.Request(cmd); err != nil {
		b.logger.Warn("failed to register bot commands", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(u)

	b.pool.Start(context.WithoutCancel(ctx))
	b.logger.Info("bot started", "username", b.username, "command", b.command)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer b.pool.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case update, ok := <-updates:
				if !ok {
					if gctx.Err() != nil {
						return nil
					}
					return ErrUpdatesClosed
				}
				b.HandleUpdate(gctx, update)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		b.api.StopReceivingUpdates()
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				b.cooldown.Cleanup()
			}
		}
	})

	err := g.Wait()
	b.logger.Info("bot stopped")
	return err
}

// HandleUpdate filters one update and queues a run for accepted requests.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if ctx.Err() != nil || msg == nil || msg.From == nil || msg.From.IsBot || msg.Chat == nil {
		return
	}

	logger := b.logger.With("update_id", update.UpdateID, "chat_id", msg.Chat.ID, "user", msg.From.UserName)

	if b.groupsOnly && !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		logger.Debug("ignoring request outside a group")
		return
	}

	prompt, ok := ParseRequest(msg, b.command, b.username)
	if !ok {
		return
	}
	if prompt == "" {
		logger.Info("request received without prompt")
		return
	}

	if allowed, wait := b.cooldown.Allow(msg.From.ID); !allowed {
		logger.Info("request rejected by cooldown", "wait", wait)
		b.notify(msg, fmt.Sprintf(cooldownTemplate, int(wait.Round(time.Second).Seconds())))
		return
	}

	logger.Info("playlist requested", "prompt", prompt)
	responder := NewChatResponder(b.api, msg.Chat.ID, msg.MessageID, logger)
	req := tasks.Request{Prompt: prompt, RequestedBy: fmt.Sprintf("telegram:%d", msg.From.ID)}

	job := Job{
		UpdateID: update.UpdateID,
		UserID:   msg.From.ID,
		Run: func(ctx context.Context) error {
			_, err := b.runner.Run(ctx, req, responder)
			return err
		},
	}
	if err := b.pool.Submit(job); err != nil {
		logger.Warn("failed to queue request", "error", err)
		b.notify(msg, BusyMessage)
	}
}

func (b *Bot) notify(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Warn("failed to send notice", "chat_id", msg.Chat.ID, "error", err)
	}
}
