package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chitieu/internal/core"
)

// ErrEmptySubmission is returned when a submitted text contains no
// usable clauses after splitting.
var ErrEmptySubmission = errors.New("submission contains no clauses")

// ClauseParser turns a single free-text clause into a structured proposal.
type ClauseParser interface {
	ParseClause(ctx context.Context, clause string) (core.ParsedClause, error)
}

// EntryStore is the persistence port the tracker depends on. Both the
// SQLite repository and the in-memory store satisfy it.
type EntryStore interface {
	List(ctx context.Context) ([]core.Entry, error)
	AddBatch(ctx context.Context, entries []core.Entry) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	GetByIDs(ctx context.Context, ids []string) ([]core.Entry, error)
	Settings(ctx context.Context) (core.Settings, error)
	UpdateSettings(ctx context.Context, s core.Settings) error
}

// Publisher hands newly created entry ids to the async dispatch queue.
type Publisher interface {
	PublishEntriesCreated(ctx context.Context, entryIDs []string) error
}

// Notifier delivers created entries directly to a webhook. Used when no
// queue is configured.
type Notifier interface {
	Notify(ctx context.Context, webhookURL string, entries []core.Entry) error
}

// CalendarMonth is a render-ready month grid: leading padding cells for a
// Monday-started week, then the days with their spend totals.
type CalendarMonth struct {
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Days        int           `json:"days"`
	Padding     int           `json:"padding"`
	DailyTotals map[int]int64 `json:"dailyTotals"`
}

// Tracker orchestrates parsing, persistence and dispatch of spending
// submissions. Publisher and notifier are optional.
type Tracker struct {
	store     EntryStore
	parser    ClauseParser
	publisher Publisher
	notifier  Notifier
}

func NewTracker(store EntryStore, parser ClauseParser, publisher Publisher, notifier Notifier) *Tracker {
	return &Tracker{
		store:     store,
		parser:    parser,
		publisher: publisher,
		notifier:  notifier,
	}
}

// AddSpending splits the text into clauses, parses them concurrently and
// commits the resulting entries as one batch. Any parse failure aborts
// the whole submission; nothing is persisted partially.
func (t *Tracker) AddSpending(ctx context.Context, text string, date core.Date) ([]core.Entry, error) {
	clauses := core.SplitClauses(text)
	if len(clauses) == 0 {
		return nil, ErrEmptySubmission
	}
	if date.IsZero() {
		date = core.Today()
	}

	entries := make([]core.Entry, len(clauses))
	g, gctx := errgroup.WithContext(ctx)
	for i, clause := range clauses {
		i, clause := i, clause
		g.Go(func() error {
			parsed, err := t.parser.ParseClause(gctx, clause)
			if err != nil {
				return fmt.Errorf("parse clause %q: %w", clause, err)
			}
			entries[i] = core.Entry{
				ID:           uuid.NewString(),
				Date:         date,
				Amount:       parsed.Amount,
				Category:     core.ResolveCategory(clause, parsed.Category),
				Description:  parsed.Description,
				OriginalText: clause,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := t.store.AddBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}
	slog.InfoContext(ctx, "Spending recorded", "clauses", len(clauses), "date", date.String())

	t.dispatchCreated(ctx, entries)
	return entries, nil
}

// dispatchCreated forwards new entries to the queue or webhook. Failures
// are logged and never fail the submission.
func (t *Tracker) dispatchCreated(ctx context.Context, entries []core.Entry) {
	if t.publisher != nil {
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := t.publisher.PublishEntriesCreated(ctx, ids); err != nil {
			slog.WarnContext(ctx, "Failed to publish created entries", "error", err)
		}
		return
	}

	if t.notifier == nil {
		return
	}
	settings, err := t.store.Settings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read settings for webhook dispatch", "error", err)
		return
	}
	if settings.WebhookURL == "" {
		return
	}
	if err := t.notifier.Notify(ctx, settings.WebhookURL, entries); err != nil {
		slog.WarnContext(ctx, "Webhook dispatch failed", "error", err, "url", settings.WebhookURL)
	}
}

// Entries returns all persisted entries, most recent first.
func (t *Tracker) Entries(ctx context.Context) ([]core.Entry, error) {
	return t.store.List(ctx)
}

// EntriesForMonth returns the month's entries sorted by date, newest day
// first. Within a day the store's most-recent-first order is kept.
func (t *Tracker) EntriesForMonth(ctx context.Context, year, month int) ([]core.Entry, error) {
	all, err := t.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var entries []core.Entry
	for _, e := range all {
		if e.Date.InMonth(year, month) {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[j].Date.Before(entries[i].Date.Time)
	})
	return entries, nil
}

func (t *Tracker) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	return t.store.Delete(ctx, id)
}

func (t *Tracker) ClearEntries(ctx context.Context) error {
	return t.store.Clear(ctx)
}

// Summary aggregates spending relative to the given day.
func (t *Tracker) Summary(ctx context.Context, today core.Date) (core.Summary, error) {
	if today.IsZero() {
		today = core.Today()
	}
	entries, err := t.store.List(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	settings, err := t.store.Settings(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.ComputeSummary(entries, settings.MonthlyBudget, today), nil
}

// Calendar builds the month grid for the calendar view.
func (t *Tracker) Calendar(ctx context.Context, year, month int) (CalendarMonth, error) {
	entries, err := t.store.List(ctx)
	if err != nil {
		return CalendarMonth{}, err
	}
	return CalendarMonth{
		Year:        year,
		Month:       month,
		Days:        core.DaysInMonth(year, month),
		Padding:     core.LeadingPadding(year, month),
		DailyTotals: core.DailyTotals(entries, year, month),
	}, nil
}

// Export selects entries for a CSV report. Returns core.ErrNoExportData
// when the period has no entries.
func (t *Tracker) Export(ctx context.Context, mode core.ExportMode, month, year int) ([]core.Entry, int64, error) {
	entries, err := t.store.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	return core.SelectForExport(entries, mode, month, year)
}

func (t *Tracker) Settings(ctx context.Context) (core.Settings, error) {
	return t.store.Settings(ctx)
}

func (t *Tracker) UpdateSettings(ctx context.Context, s core.Settings) error {
	if err := t.store.UpdateSettings(ctx, s); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	slog.InfoContext(ctx, "Settings updated", "budget", s.MonthlyBudget, "dark_mode", s.DarkMode)
	return nil
}
