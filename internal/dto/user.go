package dto

import "github.com/yukikurage/task-tracker-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	CompanyID uint64      `json:"company_id"`
	ManagerID *uint64     `json:"manager_id,omitempty"`
}

// CompanyDTO represents a company in API responses
type CompanyDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// SignupResponse is returned when a company and its manager are created
type SignupResponse struct {
	Company CompanyDTO `json:"company"`
	Manager UserDTO    `json:"manager"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		ManagerID: user.ManagerID,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return items
}

// ToCompanyDTO converts a Company model to CompanyDTO
func ToCompanyDTO(company models.Company) CompanyDTO {
	return CompanyDTO{
		ID:   company.ID,
		Name: company.Name,
	}
}
