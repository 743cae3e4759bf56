package usecase

import (
	"context"
	"sort"

	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
	"medibook/internal/domain/repository"
	"medibook/pkg/calendar"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const MaxReportRangeDays = 366

type ReportUsecase interface {
	BookingReport(ctx context.Context, from, to calendar.Date) (*dto.BookingReportResponse, error)
}

type reportUsecase struct {
	log         *logrus.Logger
	bookingRepo repository.BookingRepository
}

func NewReportUsecase(log *logrus.Logger, bookingRepo repository.BookingRepository) ReportUsecase {
	return &reportUsecase{
		log:         log,
		bookingRepo: bookingRepo,
	}
}

// BookingReport breaks bookings dated within [from, to] down by the specialty
// snapshot taken at booking time.
func (u *reportUsecase) BookingReport(ctx context.Context, from, to calendar.Date) (*dto.BookingReportResponse, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange.WithMessage("from must not be after to")
	}
	if to.After(from.AddDays(MaxReportRangeDays)) {
		return nil, ErrInvalidRange.WithMessage("report range is limited to one year")
	}

	rows, err := u.bookingRepo.CountBySpecialtyAndStatus(ctx, from, to)
	if err != nil {
		u.log.Warnf("Failed to aggregate bookings %s..%s: %+v", from, to, err)
		return nil, err
	}

	bySpecialty := make(map[string]*dto.SpecialtyReport)
	overall := dto.SpecialtyReport{Specialty: "all"}
	for _, row := range rows {
		report, ok := bySpecialty[row.Specialty]
		if !ok {
			report = &dto.SpecialtyReport{Specialty: row.Specialty}
			bySpecialty[row.Specialty] = report
		}
		addCount(report, row.Status, row.Count)
		addCount(&overall, row.Status, row.Count)
	}

	specialties := make([]dto.SpecialtyReport, 0, len(bySpecialty))
	for _, report := range bySpecialty {
		withRates(report)
		specialties = append(specialties, *report)
	}
	sort.Slice(specialties, func(i, j int) bool {
		return specialties[i].Specialty < specialties[j].Specialty
	})
	withRates(&overall)

	return &dto.BookingReportResponse{
		From:        from.String(),
		To:          to.String(),
		Specialties: specialties,
		Overall:     overall,
	}, nil
}

func addCount(report *dto.SpecialtyReport, status entity.BookingStatus, count int64) {
	switch status {
	case entity.BookingStatusScheduled:
		report.Scheduled += count
	case entity.BookingStatusConfirmed:
		report.Confirmed += count
	case entity.BookingStatusCancelled:
		report.Cancelled += count
	case entity.BookingStatusCompleted:
		report.Completed += count
	case entity.BookingStatusNoShow:
		report.NoShow += count
	default:
		return
	}
	report.Total += count
}

func withRates(report *dto.SpecialtyReport) {
	report.CancellationRate = rate(report.Cancelled, report.Total)
	report.NoShowRate = rate(report.NoShow, report.Total)
}

// rate returns part/total rounded half away from zero to two places, 0 for an empty total.
func rate(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero.Round(2)
	}
	return decimal.NewFromInt(part).Div(decimal.NewFromInt(total)).Round(2)
}
