package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytassist/internal/formatter"
	"github.com/desertthunder/ytassist/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatResponder answers one request in a Telegram chat.
//
// The acknowledgement is sent as a reply to the request and later edited in place with the
// final notice or report. When editing fails a new message is sent instead.
type ChatResponder struct {
	api       BotAPI
	chatID    int64
	replyTo   int
	logger    *log.Logger
	mu        sync.Mutex
	ackSentID int
}

// NewChatResponder creates a responder for the message replyTo in chatID.
func NewChatResponder(api BotAPI, chatID int64, replyTo int, logger *log.Logger) *ChatResponder {
	return &ChatResponder{api: api, chatID: chatID, replyTo: replyTo, logger: logger}
}

func (r *ChatResponder) SendInitial(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ReplyToMessageID = r.replyTo

	sent, err := r.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send acknowledgement: %w", err)
	}

	r.mu.Lock()
	r.ackSentID = sent.MessageID
	r.mu.Unlock()
	return nil
}

func (r *ChatResponder) SendFinal(ctx context.Context, reply models.Reply) error {
	text, parseMode := r.render(reply)

	r.mu.Lock()
	ackID := r.ackSentID
	r.mu.Unlock()

	if ackID != 0 {
		edit := tgbotapi.NewEditMessageText(r.chatID, ackID, text)
		edit.ParseMode = parseMode
		edit.DisableWebPagePreview = true
		_, err := r.api.Send(edit)
		if err == nil {
			return nil
		}
		r.logger.Warn("failed to edit acknowledgement, sending new message", "chat_id", r.chatID, "error", err)
	}

	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	msg.ReplyToMessageID = r.replyTo
	if _, err := r.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (r *ChatResponder) render(reply models.Reply) (string, string) {
	if reply.Report != nil {
		return formatter.ReportToHTML(*reply.Report), tgbotapi.ModeHTML
	}
	return reply.Notice, ""
}
