package converter

import (
	"time"

	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"

	"github.com/google/uuid"
)

func DayAvailabilityToResponse(doctorID uuid.UUID, day entity.DayAvailability) dto.AvailabilityResponse {
	slots := day.Slots
	if slots == nil {
		slots = []string{}
	}
	return dto.AvailabilityResponse{
		DoctorID:  doctorID,
		Date:      day.Date.String(),
		DayOfWeek: day.Date.Weekday().String(),
		Slots:     slots,
	}
}

func WeeklyAvailabilityToResponse(row *entity.WeeklyAvailability) dto.DayScheduleResponse {
	slots := []string(row.Slots)
	if slots == nil {
		slots = []string{}
	}
	return dto.DayScheduleResponse{
		DayOfWeek: row.DayOfWeek.String(),
		Day:       int(row.DayOfWeek),
		Slots:     slots,
	}
}

// WeeklyScheduleToResponse lists all seven days, Sunday first, with empty
// slot lists for days the doctor does not attend.
func WeeklyScheduleToResponse(doctorID uuid.UUID, rows []entity.WeeklyAvailability) *dto.WeeklyScheduleResponse {
	byDay := make(map[time.Weekday]*entity.WeeklyAvailability, len(rows))
	for i := range rows {
		byDay[rows[i].DayOfWeek] = &rows[i]
	}

	days := make([]dto.DayScheduleResponse, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		row, ok := byDay[d]
		if !ok {
			row = &entity.WeeklyAvailability{DoctorID: doctorID, DayOfWeek: d}
		}
		days = append(days, WeeklyAvailabilityToResponse(row))
	}
	return &dto.WeeklyScheduleResponse{DoctorID: doctorID, Days: days}
}
