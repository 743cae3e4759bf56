package dto

import (
	"github.com/shopspring/decimal"
)

type SpecialtyReport struct {
	Specialty        string          `json:"specialty"`
	Scheduled        int64           `json:"scheduled"`
	Confirmed        int64           `json:"confirmed"`
	Cancelled        int64           `json:"cancelled"`
	Completed        int64           `json:"completed"`
	NoShow           int64           `json:"no_show"`
	Total            int64           `json:"total"`
	CancellationRate decimal.Decimal `json:"cancellation_rate"`
	NoShowRate       decimal.Decimal `json:"no_show_rate"`
}

type BookingReportResponse struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Specialties []SpecialtyReport `json:"specialties"`
	Overall     SpecialtyReport   `json:"overall"`
}
