package usecase

import (
	"context"
	"errors"
	"testing"

	"medibook/internal/delivery/dto"
	"medibook/internal/testutil"
)

func TestDoctorUsecase(t *testing.T) {
	env := newTestEnv(t)
	uc := NewDoctorUsecase(env.log, env.userRepo, env.audit)
	ctx := context.Background()
	admin := testutil.CreateAdmin(t, env.db)

	created, err := uc.CreateDoctor(ctx, actorOf(admin), &dto.CreateDoctorRequest{
		Email:          "House@Clinic.test",
		Password:       "secret123",
		FullName:       "Gregory House",
		LicenseNumber:  "LIC-001",
		Specialization: "Diagnostics",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Email != "house@clinic.test" || !created.IsActive {
		t.Errorf("unexpected doctor %+v", created)
	}

	_, err = uc.CreateDoctor(ctx, actorOf(admin), &dto.CreateDoctorRequest{
		Email: "wilson@clinic.test", Password: "secret123", FullName: "James Wilson",
		LicenseNumber: "LIC-001", Specialization: "Oncology",
	})
	if !errors.Is(err, ErrLicenseTaken) {
		t.Errorf("expected ErrLicenseTaken, got %v", err)
	}

	bio := "Nephrology too"
	updated, err := uc.UpdateDoctor(ctx, actorOf(admin), created.ID, &dto.UpdateDoctorRequest{Biography: &bio})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Biography != bio || updated.Specialization != "Diagnostics" {
		t.Errorf("partial update changed other fields: %+v", updated)
	}

	public, err := uc.GetPublicDoctor(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if public.Email != "" || public.LicenseNumber != "" {
		t.Errorf("public view leaks contact details: %+v", public)
	}

	if _, err := env.userRepo.SetActive(ctx, created.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.GetPublicDoctor(ctx, created.ID); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("inactive doctor must be hidden publicly, got %v", err)
	}
	if _, err := uc.GetDoctor(ctx, created.ID); err != nil {
		t.Errorf("admin view must include inactive doctors, got %v", err)
	}
}

func TestDoctorUsecase_ListAndBrowse(t *testing.T) {
	env := newTestEnv(t)
	uc := NewDoctorUsecase(env.log, env.userRepo, env.audit)
	ctx := context.Background()

	testutil.CreateDoctor(t, env.db, "Dr. Ann", "Cardiology")
	testutil.CreateDoctor(t, env.db, "Dr. Bob", "Cardiology")
	gone := testutil.CreateDoctor(t, env.db, "Dr. Cid", "Cardiology")
	testutil.CreateDoctor(t, env.db, "Dr. Dee", "Dermatology")
	if _, err := env.userRepo.SetActive(ctx, gone.ID, false); err != nil {
		t.Fatal(err)
	}

	all, err := uc.ListDoctors(ctx, dto.DoctorListQuery{Specialty: "Cardiology"})
	if err != nil {
		t.Fatal(err)
	}
	if all.Total != 3 {
		t.Errorf("admin list: expected 3 cardiologists, got %d", all.Total)
	}

	public, err := uc.BrowseDoctors(ctx, dto.DoctorListQuery{Specialty: "Cardiology"})
	if err != nil {
		t.Fatal(err)
	}
	if public.Total != 2 {
		t.Errorf("public list: expected 2 active cardiologists, got %d", public.Total)
	}

	page, err := uc.BrowseDoctors(ctx, dto.DoctorListQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Doctors) != 1 {
		t.Errorf("expected 1 doctor on page 2 of 3, got %d of %d", len(page.Doctors), page.Total)
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultPageLimit},
		{3, 10, 3, 10},
		{-1, 1000, 1, MaxPageLimit},
	}
	for _, tt := range tests {
		page, limit := normalizePage(tt.page, tt.limit)
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Errorf("normalizePage(%d, %d) = %d, %d", tt.page, tt.limit, page, limit)
		}
	}
}
