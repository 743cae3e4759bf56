package converter

import (
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
)

// DoctorToResponse converts a doctor User (with its profile) to DoctorResponse DTO
func DoctorToResponse(user *entity.User) *dto.DoctorResponse {
	if user == nil {
		return nil
	}

	response := &dto.DoctorResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		IsActive: user.Active(),
	}
	if user.DoctorProfile != nil {
		response.LicenseNumber = user.DoctorProfile.LicenseNumber
		response.Specialization = user.DoctorProfile.Specialization
		response.Biography = user.DoctorProfile.Biography
	}
	return response
}

// PublicDoctorToResponse hides contact and license details from the public directory
func PublicDoctorToResponse(user *entity.User) *dto.DoctorResponse {
	response := DoctorToResponse(user)
	if response != nil {
		response.Email = ""
		response.LicenseNumber = ""
	}
	return response
}

// DoctorsToResponses converts a slice of doctor Users to slice of DoctorResponse DTOs
func DoctorsToResponses(users []entity.User, public bool) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(users))
	for i := range users {
		if public {
			responses[i] = *PublicDoctorToResponse(&users[i])
		} else {
			responses[i] = *DoctorToResponse(&users[i])
		}
	}
	return responses
}
