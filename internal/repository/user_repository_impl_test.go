package repository

import (
	"context"
	"errors"
	"testing"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"
	"medibook/internal/testutil"

	"github.com/google/uuid"
)

func TestUserRepository_CreateWithProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entity.User{
		Role:     entity.RoleDoctor,
		Email:    "strange@example.com",
		Password: "hash",
		FullName: "Stephen Strange",
		IsActive: entity.BoolPtr(true),
		DoctorProfile: &entity.DoctorProfile{
			LicenseNumber:  "LIC-1",
			Specialization: "Neurosurgery",
		},
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByEmail(ctx, "STRANGE@example.com")
	if err != nil || found == nil {
		t.Fatalf("find by email: %+v %v", found, err)
	}
	if found.DoctorProfile == nil || found.DoctorProfile.Specialization != "Neurosurgery" {
		t.Errorf("expected doctor profile, got %+v", found.DoctorProfile)
	}

	dup := &entity.User{Role: entity.RolePatient, Email: "strange@example.com", Password: "x", FullName: "Copy", IsActive: entity.BoolPtr(true)}
	if err := repo.Create(ctx, dup); !errors.Is(err, domainRepo.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	other := &entity.User{
		Role: entity.RoleDoctor, Email: "other@example.com", Password: "x", FullName: "Other", IsActive: entity.BoolPtr(true),
		DoctorProfile: &entity.DoctorProfile{LicenseNumber: "LIC-1", Specialization: "X"},
	}
	if err := repo.Create(ctx, other); !errors.Is(err, domainRepo.ErrLicenseTaken) {
		t.Errorf("expected ErrLicenseTaken, got %v", err)
	}

	missing, err := repo.FindByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown id, got %+v %v", missing, err)
	}
}

func TestUserRepository_UpdateAndSetActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	doctor := testutil.CreateDoctor(t, db, "Dr. Quinn", "Family Medicine")

	doctor.FullName = "Dr. Michaela Quinn"
	doctor.DoctorProfile.Specialization = "Pediatrics"
	if err := repo.Update(ctx, doctor); err != nil {
		t.Fatalf("update: %v", err)
	}

	affected, err := repo.SetActive(ctx, doctor.ID, false)
	if err != nil || affected != 1 {
		t.Fatalf("set active: %d %v", affected, err)
	}

	stored, err := repo.FindByID(ctx, doctor.ID)
	if err != nil || stored == nil {
		t.Fatal(err)
	}
	if stored.FullName != "Dr. Michaela Quinn" || stored.DoctorProfile.Specialization != "Pediatrics" {
		t.Errorf("update not persisted: %+v %+v", stored, stored.DoctorProfile)
	}
	if stored.Active() {
		t.Error("expected user to be inactive")
	}

	affected, err = repo.SetActive(ctx, uuid.New(), true)
	if err != nil || affected != 0 {
		t.Errorf("expected 0 rows for unknown user, got %d (%v)", affected, err)
	}
}

func TestUserRepository_ListDoctors(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateDoctor(t, db, "Alan Grant", "Paleo Cardiology")
	testutil.CreateDoctor(t, db, "Ellie Sattler", "Dermatology")
	inactive := testutil.CreateDoctor(t, db, "Ian Malcolm", "Cardiology")
	testutil.CreatePatient(t, db, "Not A Doctor")

	if _, err := repo.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatal(err)
	}

	doctors, total, err := repo.ListDoctors(ctx, entity.DoctorFilter{Specialization: "CARDIO", ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(doctors) != 1 || doctors[0].FullName != "Alan Grant" {
		t.Errorf("unexpected active cardiologists %d %+v", total, doctors)
	}

	doctors, total, err = repo.ListDoctors(ctx, entity.DoctorFilter{Specialization: "cardio"})
	if err != nil || total != 2 || len(doctors) != 2 {
		t.Errorf("expected 2 cardiologists including inactive, got %d (%v)", total, err)
	}

	doctors, total, err = repo.ListDoctors(ctx, entity.DoctorFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(doctors) != 2 {
		t.Errorf("expected page of 2 out of 3, got %d/%d", len(doctors), total)
	}
	if doctors[0].FullName != "Alan Grant" || doctors[0].DoctorProfile == nil {
		t.Errorf("expected name ordering with profile, got %+v", doctors[0])
	}

	doctors, _, err = repo.ListDoctors(ctx, entity.DoctorFilter{Name: "sattler"})
	if err != nil || len(doctors) != 1 {
		t.Errorf("expected name filter to match one doctor, got %d (%v)", len(doctors), err)
	}
}

func TestAuditLogRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuditLogRepository(db)
	ctx := context.Background()
	uid := uuid.New()

	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, &entity.AuditLog{UserID: &uid, Action: entity.AuditActionBookingCreate, Metadata: entity.JSON{"n": i}}); err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.Create(ctx, &entity.AuditLog{Action: entity.AuditActionUserLogin}); err != nil {
		t.Fatal(err)
	}

	logs, total, err := repo.FindAll(ctx, entity.AuditLogFilter{UserID: &uid}, 2, 0)
	if err != nil || total != 3 || len(logs) != 2 {
		t.Fatalf("unexpected page %d/%d (%v)", len(logs), total, err)
	}

	_, total, err = repo.FindAll(ctx, entity.AuditLogFilter{Action: entity.AuditActionUserLogin}, 10, 0)
	if err != nil || total != 1 {
		t.Errorf("expected one login entry, got %d (%v)", total, err)
	}
	_, total, _ = repo.FindAll(ctx, entity.AuditLogFilter{}, 10, 0)
	if total != 4 {
		t.Errorf("expected unfiltered total 4, got %d", total)
	}

	one, err := repo.FindByID(ctx, logs[0].ID)
	if err != nil || one == nil || one.Action != entity.AuditActionBookingCreate {
		t.Errorf("unexpected log %+v (%v)", one, err)
	}
	if _, ok := one.Metadata["n"]; !ok {
		t.Error("expected metadata to round-trip")
	}
}
