package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	UUID         string     `db:"uuid" json:"id"`
	Email        string     `db:"email" json:"email"`
	FullName     string     `db:"full_name" json:"full_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login"`
}

// IsAdmin : является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive : активна ли учётная запись
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// UserFilter : параметры выборки для административного списка.
// Пустые значения фильтров игнорируются.
type UserFilter struct {
	Status string
	Role   string
	Search string
}
