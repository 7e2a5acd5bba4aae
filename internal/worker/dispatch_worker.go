package worker

import (
	"context"
	"fmt"
	"log/slog"

	"chitieu/internal/amqp"
	"chitieu/internal/core"
)

// EntryReader is the slice of the store the worker needs.
type EntryReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]core.Entry, error)
	Settings(ctx context.Context) (core.Settings, error)
}

// Deliverer pushes entries to the configured webhook.
type Deliverer interface {
	Notify(ctx context.Context, webhookURL string, entries []core.Entry) error
}

// DispatchWorker consumes entry created messages and delivers the entries
// to the user's webhook. It runs as its own process so slow or flaky
// webhook endpoints never block the API.
type DispatchWorker struct {
	store     EntryReader
	deliverer Deliverer
}

func NewDispatchWorker(store EntryReader, deliverer Deliverer) *DispatchWorker {
	return &DispatchWorker{
		store:     store,
		deliverer: deliverer,
	}
}

// HandleEntryCreated processes one queue message. Entries deleted between
// publish and consume are simply absent from the fetch and skipped; a
// missing webhook URL drops the message without error so it is not
// requeued forever.
func (w *DispatchWorker) HandleEntryCreated(ctx context.Context, msg *amqp.EntryCreatedMessage) error {
	slog.InfoContext(ctx, "Processing entry created message",
		"entry_count", len(msg.EntryIDs))

	settings, err := w.store.Settings(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if settings.WebhookURL == "" {
		slog.WarnContext(ctx, "No webhook URL configured, dropping message",
			"entry_count", len(msg.EntryIDs))
		return nil
	}

	entries, err := w.store.GetByIDs(ctx, msg.EntryIDs)
	if err != nil {
		return fmt.Errorf("fetch entries: %w", err)
	}
	if len(entries) == 0 {
		slog.WarnContext(ctx, "No entries found for message, likely deleted",
			"entry_count", len(msg.EntryIDs))
		return nil
	}

	if err := w.deliverer.Notify(ctx, settings.WebhookURL, entries); err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}

	slog.InfoContext(ctx, "Delivered entries to webhook",
		"entry_count", len(entries),
		"url", settings.WebhookURL)

	return nil
}
