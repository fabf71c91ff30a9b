package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/planner"
	"github.com/username/budget-planner/pkg/dateutil"
)

// Handler contains HTTP handlers for the budget API
type Handler struct {
	manager     *planner.Manager
	monthsAhead int
	logger      *zap.Logger
	now         func() time.Time
}

// NewHandler creates a new handler. monthsAhead is how many months after the
// current one POST /api/salary/generate covers by default.
func NewHandler(manager *planner.Manager, monthsAhead int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		manager:     manager,
		monthsAhead: monthsAhead,
		logger:      logger,
		now:         time.Now,
	}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CALENDAR
// =============================================================================

// GetMonth returns working-day info for /api/calendar/{year}/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Calendar().MonthInfo(year, month))
}

// maxIntervalDays bounds the span accepted by WorkingDays
const maxIntervalDays = 731

// WorkingDays lists working days between ?from and ?to inclusive
func (h *Handler) WorkingDays(w http.ResponseWriter, r *http.Request) {
	from, err := dateutil.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err)
		return
	}
	to, err := dateutil.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err)
		return
	}
	if to.After(from.AddDate(0, 0, maxIntervalDays-1)) {
		writeError(w, http.StatusBadRequest, "interval too long",
			fmt.Errorf("at most %d days are allowed", maxIntervalDays))
		return
	}

	days, err := h.manager.Calendar().WorkingDaysInInterval(from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(dateLayout))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":  from.Format(dateLayout),
		"to":    to.Format(dateLayout),
		"count": len(out),
		"days":  out,
	})
}

// =============================================================================
// SALARY
// =============================================================================

// GetPayConfig returns the active pay schedule and whether it was saved
func (h *Handler) GetPayConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := h.manager.Service().PayConfig(ctx)
	saved := err == nil
	if err != nil && !errors.Is(err, budget.ErrNoPayConfig) {
		h.respondError(w, err)
		return
	}

	cfg, err := h.manager.PayConfig(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"config": cfg,
		"saved":  saved,
	})
}

// SavePayConfig replaces the pay schedule
func (h *Handler) SavePayConfig(w http.ResponseWriter, r *http.Request) {
	var req PayConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	cfg, err := req.toPayConfig()
	if err != nil {
		h.respondError(w, err)
		return
	}

	saved, err := h.manager.Service().SavePayConfig(r.Context(), cfg)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetForecast returns forecasts for ?year&month[&months], or the current and next month
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := h.now()
	year, month, months := now.Year(), now.Month(), 2

	if q.Get("year") != "" || q.Get("month") != "" {
		var err error
		year, month, err = parseYearMonth(q.Get("year"), q.Get("month"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month", err)
			return
		}
		months = 1
	}
	if s := q.Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 24 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 24", err)
			return
		}
		months = n
	}

	forecasts, err := h.manager.Forecast(r.Context(), year, month, months)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toForecastDTOs(forecasts))
}

// Generate stores forecasted payments as planned income
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	now := h.now()
	year, month := now.Year(), now.Month()
	if req.Year != 0 || req.Month != 0 {
		var err error
		year, month, err = parseYearMonth(strconv.Itoa(req.Year), strconv.Itoa(req.Month))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month", err)
			return
		}
	}
	months := req.Months
	if months == 0 {
		months = h.monthsAhead + 1
	}
	if months < 1 || months > 24 {
		writeError(w, http.StatusBadRequest, "months must be between 1 and 24", nil)
		return
	}

	result, err := h.manager.Generate(r.Context(), year, month, months, req.DryRun)
	if err != nil {
		h.respondError(w, err)
		return
	}

	status := http.StatusOK
	if len(result.Created) > 0 && !req.DryRun {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// GetMonthlyStatus returns calendar, forecast and recorded totals for ?year&month
func (h *Handler) GetMonthlyStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := h.now()
	year, month := now.Year(), now.Month()
	if q.Get("year") != "" || q.Get("month") != "" {
		var err error
		year, month, err = parseYearMonth(q.Get("year"), q.Get("month"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month", err)
			return
		}
	}

	status, err := h.manager.MonthlyStatus(r.Context(), year, month)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// =============================================================================
// BUDGET
// =============================================================================

// ListCategories returns all categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.manager.Service().Categories(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// ListTransactions returns transactions, optionally for ?month=YYYY-MM
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	txs, err := h.manager.Service().Transactions(r.Context(), month)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// CreateTransaction records a transaction
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		h.respondError(w, err)
		return
	}

	created, err := h.manager.Service().CreateTransaction(r.Context(), t)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteTransaction removes /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Service().DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary returns income, expense and balance, optionally for ?month=YYYY-MM
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	sum, err := h.manager.Service().Summary(r.Context(), month)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case budget.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	case budget.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func parseYearMonth(yearStr, monthStr string) (int, time.Month, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("invalid year %q", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", monthStr)
	}
	return year, time.Month(month), nil
}

func parseMonthParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := dateutil.ParseMonth(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
