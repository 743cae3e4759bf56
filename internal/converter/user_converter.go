package converter

import (
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Profiles are attached only when preloaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role.String(),
		IsActive:  user.Active(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.DoctorProfile != nil {
		response.DoctorProfile = &dto.DoctorProfileResponse{
			LicenseNumber:  user.DoctorProfile.LicenseNumber,
			Specialization: user.DoctorProfile.Specialization,
			Biography:      user.DoctorProfile.Biography,
		}
	}

	if user.PatientProfile != nil {
		response.PatientProfile = &dto.PatientProfileResponse{
			PhoneNumber: user.PatientProfile.PhoneNumber,
			DateOfBirth: user.PatientProfile.DateOfBirth.String(),
			Gender:      user.PatientProfile.Gender,
			Address:     user.PatientProfile.Address,
		}
	}

	return response
}
