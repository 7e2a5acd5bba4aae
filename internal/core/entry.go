package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyID         = errors.New("empty entry id")
	ErrNotFound        = errors.New("entry not found")
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar date (year-month-day). It serializes as
	// "YYYY-MM-DD", the canonical form used in storage and exports.
	Date struct {
		time.Time
	}

	// Entry is one recorded spending transaction. Entries are immutable
	// once created; the only mutation is whole-entry deletion.
	Entry struct {
		ID           string   `json:"id"`
		Date         Date     `json:"date"`
		Amount       int64    `json:"amount"`
		Category     Category `json:"category"`
		Description  string   `json:"description"`
		OriginalText string   `json:"originalText,omitempty"`
	}

	// ParsedClause is the structured result the external parser extracts
	// from one free-text clause. Category carries the model's raw proposal
	// (a display label); the override rule maps it to a final Category.
	ParsedClause struct {
		Amount      int64
		Category    string
		Description string
	}
)

// NewDate builds a Date from year, month (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current system clock date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// InMonth reports whether the date falls in the given year and month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && int(d.Month()) == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

// clauseDelimiter separates multiple transactions in one submission.
const clauseDelimiter = ","

// SplitClauses splits a free-text submission into individual clauses:
// split on the delimiter, trim whitespace, drop empty segments.
func SplitClauses(text string) []string {
	parts := strings.Split(text, clauseDelimiter)
	clauses := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		clauses = append(clauses, p)
	}
	return clauses
}

// JoinTranscript appends a voice transcript to existing typed input,
// comma-joined when the input is non-empty. The transcript never replaces
// what the user already typed.
func JoinTranscript(existing, transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return transcript
	}
	return existing + ", " + transcript
}
