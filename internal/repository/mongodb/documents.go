package mongodb

import (
	"time"

	"medibook/internal/domain/entity"
	"medibook/pkg/calendar"

	"github.com/google/uuid"
)

const (
	usersCollection          = "users"
	availabilitiesCollection = "weekly_availabilities"
	bookingsCollection       = "bookings"
	auditLogsCollection      = "audit_logs"
)

type doctorProfileDoc struct {
	LicenseNumber  string `bson:"license_number"`
	Specialization string `bson:"specialization"`
	Biography      string `bson:"biography,omitempty"`
}

type patientProfileDoc struct {
	PhoneNumber string `bson:"phone_number,omitempty"`
	DateOfBirth string `bson:"date_of_birth"`
	Gender      string `bson:"gender"`
	Address     string `bson:"address,omitempty"`
}

// userDoc embeds the role profile instead of keeping a separate collection.
type userDoc struct {
	ID             string             `bson:"_id"`
	Role           string             `bson:"role"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password"`
	FullName       string             `bson:"full_name"`
	IsActive       bool               `bson:"is_active"`
	DoctorProfile  *doctorProfileDoc  `bson:"doctor_profile,omitempty"`
	PatientProfile *patientProfileDoc `bson:"patient_profile,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type availabilityDoc struct {
	ID        string    `bson:"_id"`
	DoctorID  string    `bson:"doctor_id"`
	DayOfWeek int       `bson:"day_of_week"`
	Slots     []string  `bson:"slots"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// bookingDoc stores the date as YYYY-MM-DD so range filters compare lexicographically.
// Occupying mirrors status so the partial unique index can filter on a plain equality.
type bookingDoc struct {
	ID              string    `bson:"_id"`
	BookingCode     string    `bson:"booking_code"`
	PatientID       string    `bson:"patient_id"`
	DoctorID        string    `bson:"doctor_id"`
	Date            string    `bson:"date"`
	TimeSlot        string    `bson:"time_slot"`
	Status          string    `bson:"status"`
	Occupying       bool      `bson:"occupying"`
	Specialty       string    `bson:"specialty"`
	Notes           string    `bson:"notes,omitempty"`
	CancelReason    string    `bson:"cancel_reason,omitempty"`
	RescheduledFrom string    `bson:"rescheduled_from,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type auditLogDoc struct {
	ID        string                 `bson:"_id"`
	UserID    string                 `bson:"user_id,omitempty"`
	Action    string                 `bson:"action"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"created_at"`
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toUserDoc(u *entity.User) userDoc {
	doc := userDoc{
		ID:        u.ID.String(),
		Role:      string(u.Role),
		Email:     u.Email,
		Password:  u.Password,
		FullName:  u.FullName,
		IsActive:  u.Active(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if p := u.DoctorProfile; p != nil {
		doc.DoctorProfile = &doctorProfileDoc{
			LicenseNumber:  p.LicenseNumber,
			Specialization: p.Specialization,
			Biography:      p.Biography,
		}
	}
	if p := u.PatientProfile; p != nil {
		doc.PatientProfile = &patientProfileDoc{
			PhoneNumber: p.PhoneNumber,
			DateOfBirth: p.DateOfBirth.String(),
			Gender:      p.Gender,
			Address:     p.Address,
		}
	}
	return doc
}

func (d userDoc) toEntity() *entity.User {
	id := parseID(d.ID)
	u := &entity.User{
		ID:        id,
		Role:      entity.Role(d.Role),
		Email:     d.Email,
		Password:  d.Password,
		FullName:  d.FullName,
		IsActive:  entity.BoolPtr(d.IsActive),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if p := d.DoctorProfile; p != nil {
		u.DoctorProfile = &entity.DoctorProfile{
			UserID:         id,
			LicenseNumber:  p.LicenseNumber,
			Specialization: p.Specialization,
			Biography:      p.Biography,
		}
	}
	if p := d.PatientProfile; p != nil {
		dob, _ := calendar.ParseDate(p.DateOfBirth)
		u.PatientProfile = &entity.PatientProfile{
			UserID:      id,
			PhoneNumber: p.PhoneNumber,
			DateOfBirth: dob,
			Gender:      p.Gender,
			Address:     p.Address,
		}
	}
	return u
}

func toAvailabilityDoc(a *entity.WeeklyAvailability) availabilityDoc {
	slots := []string(a.Slots)
	if slots == nil {
		slots = []string{}
	}
	return availabilityDoc{
		ID:        a.ID.String(),
		DoctorID:  a.DoctorID.String(),
		DayOfWeek: int(a.DayOfWeek),
		Slots:     slots,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d availabilityDoc) toEntity() *entity.WeeklyAvailability {
	return &entity.WeeklyAvailability{
		ID:        parseID(d.ID),
		DoctorID:  parseID(d.DoctorID),
		DayOfWeek: time.Weekday(d.DayOfWeek),
		Slots:     entity.SlotList(d.Slots),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toBookingDoc(b *entity.Booking) bookingDoc {
	doc := bookingDoc{
		ID:           b.ID.String(),
		BookingCode:  b.BookingCode,
		PatientID:    b.PatientID.String(),
		DoctorID:     b.DoctorID.String(),
		Date:         b.Date.String(),
		TimeSlot:     b.TimeSlot,
		Status:       string(b.Status),
		Occupying:    b.Status.Occupies(),
		Specialty:    b.Specialty,
		Notes:        b.Notes,
		CancelReason: b.CancelReason,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.RescheduledFrom != nil {
		doc.RescheduledFrom = b.RescheduledFrom.String()
	}
	return doc
}

func (d bookingDoc) toEntity() entity.Booking {
	date, _ := calendar.ParseDate(d.Date)
	b := entity.Booking{
		ID:           parseID(d.ID),
		BookingCode:  d.BookingCode,
		PatientID:    parseID(d.PatientID),
		DoctorID:     parseID(d.DoctorID),
		Date:         date,
		TimeSlot:     d.TimeSlot,
		Status:       entity.BookingStatus(d.Status),
		Specialty:    d.Specialty,
		Notes:        d.Notes,
		CancelReason: d.CancelReason,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.RescheduledFrom != "" {
		from := parseID(d.RescheduledFrom)
		b.RescheduledFrom = &from
	}
	return b
}

func toAuditLogDoc(l *entity.AuditLog) auditLogDoc {
	doc := auditLogDoc{
		ID:        l.ID.String(),
		Action:    l.Action,
		Metadata:  l.Metadata,
		CreatedAt: l.CreatedAt,
	}
	if l.UserID != nil {
		doc.UserID = l.UserID.String()
	}
	return doc
}

func (d auditLogDoc) toEntity() entity.AuditLog {
	l := entity.AuditLog{
		ID:        parseID(d.ID),
		Action:    d.Action,
		Metadata:  entity.JSON(d.Metadata),
		CreatedAt: d.CreatedAt,
	}
	if d.UserID != "" {
		uid := parseID(d.UserID)
		l.UserID = &uid
	}
	return l
}

func statusStrings(statuses []entity.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
