package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"chitieu/internal/charts"
	"chitieu/internal/core"
	"chitieu/internal/gemini"
	"chitieu/internal/services"
)

type addSpendingRequest struct {
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
}

type entriesResponse struct {
	Entries []core.Entry `json:"entries"`
}

// handleEntries serves the entry collection: GET lists, POST submits new
// spending text.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListEntries(w, r)
	case http.MethodPost:
		s.handleAddSpending(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	var (
		entries []core.Entry
		err     error
	)
	q := r.URL.Query()
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month := parseYearMonth(r)
		entries, err = s.tracker.EntriesForMonth(r.Context(), year, month)
	} else {
		entries, err = s.tracker.Entries(r.Context())
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "List entries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load entries")
		return
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

func (s *Server) handleAddSpending(w http.ResponseWriter, r *http.Request) {
	var req addSpendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var date core.Date
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	entries, err := s.tracker.AddSpending(r.Context(), sanitizeInput(req.Text), date)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, entriesResponse{Entries: entries})
	case errors.Is(err, services.ErrEmptySubmission):
		writeError(w, http.StatusBadRequest, "submission contains no clauses")
	case errors.Is(err, gemini.ErrUnparseableResponse):
		writeError(w, http.StatusUnprocessableEntity, "could not understand the spending text")
	default:
		slog.ErrorContext(r.Context(), "Add spending failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not process the spending text")
	}
}

// handleEntryByID serves DELETE /api/entries/{id}. Deletion is destructive
// and requires confirm=true.
func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if !confirmed(r) {
		writeError(w, http.StatusBadRequest, "confirm=true is required to delete an entry")
		return
	}

	err := s.tracker.DeleteEntry(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	default:
		slog.ErrorContext(r.Context(), "Delete entry failed", "error", err, "entry_id", id)
		writeError(w, http.StatusInternalServerError, "could not delete entry")
	}
}

// handleClearEntries wipes all entries. Requires confirm=true.
func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if !confirmed(r) {
		writeError(w, http.StatusBadRequest, "confirm=true is required to clear all entries")
		return
	}

	if err := s.tracker.ClearEntries(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear entries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear entries")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var today core.Date
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		today = parsed
	}

	summary, err := s.tracker.Summary(r.Context(), today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	year, month := parseYearMonth(r)
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	cal, err := s.tracker.Calendar(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Calendar failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not build calendar")
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// handleExport streams a CSV report for one month or one year.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	mode := core.ExportMode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "mode must be month or year")
		return
	}
	year, month := parseYearMonth(r)

	rows, total, err := s.tracker.Export(r.Context(), mode, month, year)
	switch {
	case errors.Is(err, core.ErrNoExportData):
		writeError(w, http.StatusNotFound, "no entries in the selected period")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not export entries")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+core.ExportFileName(mode)+`"`)
	if err := core.WriteCSV(w, rows, total); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.tracker.Settings(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Read settings failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not load settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var settings core.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if settings.MonthlyBudget < 0 {
			writeError(w, http.StatusBadRequest, "monthly budget must not be negative")
			return
		}
		if err := s.tracker.UpdateSettings(r.Context(), settings); err != nil {
			slog.ErrorContext(r.Context(), "Update settings failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not save settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

// handleCategoryChart renders the monthly per-category bar chart as PNG.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	year, month := parseYearMonth(r)
	entries, err := s.tracker.Entries(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart data load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load entries")
		return
	}

	png, err := charts.CategoryBreakdownPNG(entries, year, month)
	switch {
	case errors.Is(err, charts.ErrNoChartData):
		writeError(w, http.StatusNotFound, "no spending in the selected period")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Chart render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
