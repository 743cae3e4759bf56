package usecase

import (
	"context"
	"sort"
	"time"

	"medibook/internal/converter"
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
	"medibook/internal/domain/repository"
	"medibook/internal/service"
	"medibook/pkg/calendar"
	"medibook/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

const (
	MaxAvailabilityRangeDays = 14

	rangeConcurrency = 4
)

type AvailabilityUsecase interface {
	// ResolveAvailability returns the free slots of a doctor on date, in template order.
	ResolveAvailability(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]string, error)
	ResolveAvailabilityRange(ctx context.Context, doctorID uuid.UUID, from calendar.Date, days int) (*dto.AvailabilityRangeResponse, error)
	GetWeeklyTemplate(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error)
	SetDayAvailability(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, day time.Weekday, slots []string) (*dto.DayScheduleResponse, error)
}

type availabilityUsecase struct {
	log              *logrus.Logger
	userRepo         repository.UserRepository
	availabilityRepo repository.AvailabilityRepository
	bookingRepo      repository.BookingRepository
	cache            service.AvailabilityCache
	auditService     service.AuditService
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	availabilityRepo repository.AvailabilityRepository,
	bookingRepo repository.BookingRepository,
	cache service.AvailabilityCache,
	auditService service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:              log,
		userRepo:         userRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		cache:            cache,
		auditService:     auditService,
	}
}

// ResolveAvailability
//
// Flow:
// 1. Doctor must exist, be a doctor and be active
// 2. Serve from cache when present
// 3. Template slots for date.Weekday() minus slots held by scheduled/confirmed bookings
func (u *availabilityUsecase) ResolveAvailability(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]string, error) {
	if _, err := u.activeDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return u.resolve(ctx, doctorID, date)
}

func (u *availabilityUsecase) ResolveAvailabilityRange(ctx context.Context, doctorID uuid.UUID, from calendar.Date, days int) (*dto.AvailabilityRangeResponse, error) {
	if days < 1 || days > MaxAvailabilityRangeDays {
		return nil, ErrInvalidRange.WithMessage("days must be between 1 and 14")
	}
	if _, err := u.activeDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	p := pool.NewWithResults[entity.DayAvailability]().
		WithContext(ctx).
		WithMaxGoroutines(rangeConcurrency).
		WithCancelOnError()
	for i := 0; i < days; i++ {
		date := from.AddDays(i)
		p.Go(func(ctx context.Context) (entity.DayAvailability, error) {
			slots, err := u.resolve(ctx, doctorID, date)
			if err != nil {
				return entity.DayAvailability{}, err
			}
			return entity.DayAvailability{Date: date, Slots: slots}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		u.log.Warnf("Failed to resolve availability range for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date.Before(results[j].Date)
	})

	response := &dto.AvailabilityRangeResponse{
		DoctorID: doctorID,
		Days:     make([]dto.AvailabilityResponse, len(results)),
	}
	for i, day := range results {
		response.Days[i] = converter.DayAvailabilityToResponse(doctorID, day)
	}
	return response, nil
}

func (u *availabilityUsecase) GetWeeklyTemplate(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	if _, err := u.doctor(ctx, doctorID); err != nil {
		return nil, err
	}

	rows, err := u.availabilityRepo.FindByDoctor(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find weekly template for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return converter.WeeklyScheduleToResponse(doctorID, rows), nil
}

// SetDayAvailability replaces the slot list of one weekday. Doctors may only
// edit their own template; admins may edit any.
func (u *availabilityUsecase) SetDayAvailability(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, day time.Weekday, slots []string) (*dto.DayScheduleResponse, error) {
	if !actor.IsAdmin() && actor.UserID != doctorID {
		return nil, ErrNotScheduleOwner
	}
	if day < time.Sunday || day > time.Saturday {
		return nil, ErrInvalidDay
	}

	list := entity.SlotList(slots)
	if list == nil {
		list = entity.SlotList{}
	}
	if err := list.Validate(); err != nil {
		return nil, ErrInvalidSlots.WithMessage(err.Error())
	}

	if _, err := u.doctor(ctx, doctorID); err != nil {
		return nil, err
	}

	previous, err := u.availabilityRepo.FindByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s on %s: %+v", doctorID, day, err)
		return nil, err
	}

	row := &entity.WeeklyAvailability{
		DoctorID:  doctorID,
		DayOfWeek: day,
		Slots:     list,
	}
	if err := u.availabilityRepo.Upsert(ctx, row); err != nil {
		u.log.Warnf("Failed to save availability for doctor %s on %s: %+v", doctorID, day, err)
		return nil, err
	}

	if err := u.cache.InvalidateDoctor(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate availability cache for doctor %s: %+v", doctorID, err)
	}

	var oldSlots []string
	if previous != nil {
		oldSlots = previous.Slots
	}
	u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionAvailabilityUpdate, "weekly_availability", row.ID.String(),
		map[string]interface{}{"day": day.String(), "slots": oldSlots},
		map[string]interface{}{"day": day.String(), "slots": []string(list)},
	)

	u.log.Infof("Availability updated: doctor=%s, day=%s, slots=%d", doctorID, day, len(list))
	response := converter.WeeklyAvailabilityToResponse(row)
	return &response, nil
}

func (u *availabilityUsecase) resolve(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]string, error) {
	cached, version, ok, err := u.cache.Get(ctx, doctorID, date)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		u.log.Warnf("Failed to read availability cache for doctor %s on %s: %+v", doctorID, date, err)
	case ok:
		metrics.RecordCacheLookup("hit")
		return cached, nil
	default:
		metrics.RecordCacheLookup("miss")
	}

	template, err := u.availabilityRepo.FindByDoctorAndDay(ctx, doctorID, date.Weekday())
	if err != nil {
		u.log.Warnf("Failed to find template for doctor %s on %s: %+v", doctorID, date.Weekday(), err)
		return nil, err
	}

	free := []string{}
	if template != nil && len(template.Slots) > 0 {
		bookings, err := u.bookingRepo.FindByDoctorAndDate(ctx, doctorID, date, entity.OccupyingStatuses)
		if err != nil {
			u.log.Warnf("Failed to find bookings for doctor %s on %s: %+v", doctorID, date, err)
			return nil, err
		}
		taken := make(map[string]struct{}, len(bookings))
		for _, b := range bookings {
			taken[b.TimeSlot] = struct{}{}
		}
		free = template.Slots.Without(taken)
	}

	stored, err := u.cache.Set(ctx, doctorID, date, version, free)
	if err != nil {
		u.log.Warnf("Failed to cache availability for doctor %s on %s: %+v", doctorID, date, err)
	} else if !stored {
		u.log.Debugf("Availability for doctor %s on %s changed while resolving, not cached", doctorID, date)
	}
	return free, nil
}

// doctor returns the user if it exists and holds the doctor role.
func (u *availabilityUsecase) doctor(ctx context.Context, doctorID uuid.UUID) (*entity.User, error) {
	return findDoctor(ctx, u.log, u.userRepo, doctorID, false)
}

func (u *availabilityUsecase) activeDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.User, error) {
	return findDoctor(ctx, u.log, u.userRepo, doctorID, true)
}

func findDoctor(ctx context.Context, log *logrus.Logger, userRepo repository.UserRepository, doctorID uuid.UUID, activeOnly bool) (*entity.User, error) {
	user, err := userRepo.FindByID(ctx, doctorID)
	if err != nil {
		log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if user == nil || user.Role != entity.RoleDoctor {
		return nil, ErrDoctorNotFound
	}
	if activeOnly && !user.Active() {
		return nil, ErrDoctorNotFound
	}
	return user, nil
}
