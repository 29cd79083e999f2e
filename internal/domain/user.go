package domain

import (
	"time"
)

// MediaRef - ссылка на объект во внешнем медиа-хранилище.
type MediaRef struct {
	PublicID string `json:"publicId" db:"public_id" bson:"publicId"`
	URL      string `json:"url" db:"url" bson:"url"`
}

// User представляет модель пользователя.
// Хеш пароля и состояние сброса пароля никогда не отдаются в JSON.
type User struct {
	ID                string     `json:"id" bson:"_id"`
	Username          string     `json:"username" bson:"username"`
	Email             string     `json:"email" bson:"email"`
	PasswordHash      string     `json:"-" bson:"password"`
	Role              Role       `json:"role" bson:"role"`
	ProfileImage      *MediaRef  `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	ResetTokenHash    string     `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetTokenExpires *time.Time `json:"-" bson:"resetPasswordExpires,omitempty"`
	Favorites         []string   `json:"favorites" bson:"favorites"`
	CreatedAt         time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// UserView - публичное представление пользователя.
type UserView struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	ProfileImage *MediaRef `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View возвращает пользователя без секретных полей.
func (u *User) View() *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// SignupRequest для регистрации нового пользователя (HTTP)
type SignupRequest struct {
	Username string `json:"username" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// SigninRequest для входа пользователя (HTTP)
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse для ответа при успешном входе
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserView `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=100"`
}

// UpdateProfileRequest - частичное обновление собственного профиля.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,notblank,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateUserRequest - создание пользователя администратором (роль по умолчанию user).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user publisher admin"`
}

// UpdateUserRequest - изменение пользователя администратором.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,notblank,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=100"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user publisher admin"`
}

type FavoriteRequest struct {
	WorkID string `json:"workId" validate:"required,notblank"`
}

// FavoriteStatus - ответ на проверку наличия работы в избранном.
type FavoriteStatus struct {
	WorkID     string `json:"workId"`
	IsFavorite bool   `json:"isFavorite"`
}

// MessageResponse - универсальное подтверждение операции.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadedMedia - ответ на загрузку изображения.
type UploadedMedia struct {
	Message string   `json:"message"`
	Data    MediaRef `json:"data"`
}

// FavoriteList - идентификаторы избранных работ пользователя.
type FavoriteList struct {
	Count     int      `json:"count"`
	Favorites []string `json:"favorites"`
}
