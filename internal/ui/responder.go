package ui

import (
	"context"
	"sync"

	"github.com/desertthunder/ytassist/internal/models"
)

// Responder keeps a run's acknowledgement and final reply for the TUI to render.
type Responder struct {
	mu    sync.Mutex
	ack   string
	final *models.Reply
}

func (r *Responder) SendInitial(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ack = text
	return nil
}

func (r *Responder) SendFinal(ctx context.Context, reply models.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.final = &reply
	return nil
}

// Ack returns the acknowledgement text, if any.
func (r *Responder) Ack() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ack
}

// Final returns the concluding reply, or nil when the run never sent one.
func (r *Responder) Final() *models.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}
