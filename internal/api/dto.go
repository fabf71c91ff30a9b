package api

import (
	"github.com/shopspring/decimal"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/salary"
	"github.com/username/budget-planner/pkg/dateutil"
)

const dateLayout = "2006-01-02"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateTransactionRequest is the body of POST /api/transactions
type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Status      string          `json:"status,omitempty"`
	CategoryID  *string         `json:"category_id,omitempty"`
}

func (r CreateTransactionRequest) toTransaction() (budget.Transaction, error) {
	date, err := dateutil.ParseDate(r.Date)
	if err != nil {
		return budget.Transaction{}, &budget.ValidationError{Field: "date", Reason: err.Error()}
	}
	t := budget.Transaction{
		Amount:      r.Amount,
		Date:        date,
		Description: r.Description,
		Type:        budget.TransactionType(r.Type),
		Status:      budget.Status(r.Status),
	}
	if r.CategoryID != nil && *r.CategoryID != "" {
		t.CategoryID = r.CategoryID
	}
	return t, nil
}

// PayConfigRequest is the body of PUT /api/salary/config
type PayConfigRequest struct {
	Type               string           `json:"type"`
	BaseAmount         decimal.Decimal  `json:"base_amount"`
	AdvanceDay         int              `json:"advance_day"`
	SalaryDay          int              `json:"salary_day"`
	AdvancePercent     *decimal.Decimal `json:"advance_percent,omitempty"`
	WorkingHoursPerDay *decimal.Decimal `json:"working_hours_per_day,omitempty"`
}

func (r PayConfigRequest) toPayConfig() (salary.PayConfig, error) {
	payType, err := salary.ParsePayType(r.Type)
	if err != nil {
		return salary.PayConfig{}, err
	}
	return salary.PayConfig{
		Type:               payType,
		BaseAmount:         r.BaseAmount,
		AdvanceDay:         r.AdvanceDay,
		SalaryDay:          r.SalaryDay,
		AdvancePercent:     r.AdvancePercent,
		WorkingHoursPerDay: r.WorkingHoursPerDay,
	}, nil
}

// GenerateRequest is the optional body of POST /api/salary/generate
type GenerateRequest struct {
	Year   int  `json:"year,omitempty"`
	Month  int  `json:"month,omitempty"`
	Months int  `json:"months,omitempty"`
	DryRun bool `json:"dry_run,omitempty"`
}

// PaymentDTO is a forecasted payment with a plain date
type PaymentDTO struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
}

// ForecastDTO is one month of forecast
type ForecastDTO struct {
	Year                 int          `json:"year"`
	Month                int          `json:"month"`
	Payments             []PaymentDTO `json:"payments"`
	TotalWorkingDays     int          `json:"total_working_days"`
	FirstHalfWorkingDays int          `json:"first_half_working_days"`
	Warnings             []string     `json:"warnings,omitempty"`
}

func toForecastDTOs(forecasts []*salary.Forecast) []ForecastDTO {
	out := make([]ForecastDTO, 0, len(forecasts))
	for _, f := range forecasts {
		dto := ForecastDTO{
			Year:                 f.Year,
			Month:                int(f.Month),
			Payments:             make([]PaymentDTO, 0, len(f.Payments)),
			TotalWorkingDays:     f.TotalWorkingDays,
			FirstHalfWorkingDays: f.FirstHalfWorkingDays,
		}
		for _, p := range f.Payments {
			dto.Payments = append(dto.Payments, PaymentDTO{
				Date:   p.Date.Format(dateLayout),
				Amount: p.Amount,
				Kind:   string(p.Kind),
			})
		}
		for _, w := range f.Warnings {
			dto.Warnings = append(dto.Warnings, w.Error())
		}
		out = append(out, dto)
	}
	return out
}
