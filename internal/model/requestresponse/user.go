package requestresponse

import "user-management-server/internal/model"

// UpdateProfileRequest : тело запроса на обновление профиля
type UpdateProfileRequest struct {
	FullName string `json:"full_name" example:"Ivan Petrov"`
	Email    string `json:"email" example:"user@example.com"`
}

// ChangePasswordRequest : тело запроса на смену пароля
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password" example:"Old#Passw0rd"`
	NewPassword        string `json:"new_password" example:"New#Passw0rd1"`
	ConfirmNewPassword string `json:"confirm_new_password" example:"New#Passw0rd1"`
}

// UserListData : административный список пользователей
type UserListData struct {
	Count int           `json:"count" example:"25"`
	Users []*model.User `json:"users"`
}
