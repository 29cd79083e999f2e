package domain

import (
	"errors"
	"fmt"
)

// ErrorKind - категория прикладной ошибки, от нее зависит HTTP-статус ответа.
type ErrorKind string

const (
	KindValidation            ErrorKind = "VALIDATION"
	KindAuthRequired          ErrorKind = "AUTH_REQUIRED"
	KindTokenInvalid          ErrorKind = "TOKEN_INVALID"
	KindTokenInvalidOrExpired ErrorKind = "TOKEN_INVALID_OR_EXPIRED"
	KindInvalidCredentials    ErrorKind = "INVALID_CREDENTIALS"
	KindForbidden             ErrorKind = "FORBIDDEN"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindConflict              ErrorKind = "CONFLICT"
	KindUploadFailed          ErrorKind = "UPLOAD_FAILED"
	KindDependencyFailed      ErrorKind = "DEPENDENCY_FAILED"
	KindInternal              ErrorKind = "INTERNAL"
)

// FieldError описывает нарушенное правило валидации одного поля.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Error - прикладная ошибка с категорией и машиночитаемым кодом.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []FieldError
	Err     error // Исходная причина, наружу не отдается
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по коду, чтобы errors.Is работал с копиями и обертками.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewError создает ошибку, код совпадает с категорией.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Code: string(kind), Message: message}
}

// Wrap создает ошибку категории kind, сохраняя причину.
func Wrap(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Code: string(kind), Message: message, Err: err}
}

// Validation создает ошибку валидации с деталями по полям.
func Validation(message string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: string(KindValidation), Message: message, Details: details}
}

// Internal оборачивает непредвиденную ошибку хранилища или зависимости.
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// KindOf возвращает категорию ошибки; ошибки вне домена считаются внутренними.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Именованные ошибки предметной области
var (
	ErrAuthRequired        = &Error{Kind: KindAuthRequired, Code: "AUTH_REQUIRED", Message: "Authorization token required"}
	ErrTokenInvalid        = &Error{Kind: KindTokenInvalid, Code: "TOKEN_INVALID", Message: "Invalid or expired token"}
	ErrResetTokenInvalid   = &Error{Kind: KindTokenInvalidOrExpired, Code: "TOKEN_INVALID_OR_EXPIRED", Message: "Token is invalid or has expired"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	ErrForbidden           = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: "Access denied"}
	ErrEmailInUse          = &Error{Kind: KindConflict, Code: "EMAIL_IN_USE", Message: "Email already in use"}
	ErrUserExists          = &Error{Kind: KindConflict, Code: "USER_EXISTS", Message: "User with email or username already exists"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrWorkNotFound        = &Error{Kind: KindNotFound, Code: "WORK_NOT_FOUND", Message: "Work not found"}
	ErrAlreadyFavorite     = &Error{Kind: KindConflict, Code: "ALREADY_FAVORITE", Message: "Work already in favorites"}
	ErrNotFavorite         = &Error{Kind: KindNotFound, Code: "NOT_FAVORITE", Message: "Work not in favorites"}
	ErrCommentNotFound     = &Error{Kind: KindNotFound, Code: "COMMENT_NOT_FOUND", Message: "Comment not found"}
	ErrAdvertisementAbsent = &Error{Kind: KindNotFound, Code: "ADVERTISEMENT_NOT_FOUND", Message: "Advertisement not found"}
	ErrContactNotFound     = &Error{Kind: KindNotFound, Code: "CONTACT_NOT_FOUND", Message: "Message not found"}
)

// UploadFailed оборачивает ошибку медиа-хранилища.
func UploadFailed(err error) *Error {
	return &Error{Kind: KindUploadFailed, Code: string(KindUploadFailed), Message: "Failed to upload media", Err: err}
}

// DependencyFailed оборачивает ошибку внешнего сервиса (почта, gRPC).
func DependencyFailed(message string, err error) *Error {
	return &Error{Kind: KindDependencyFailed, Code: string(KindDependencyFailed), Message: message, Err: err}
}
