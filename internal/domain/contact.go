package domain

import (
	"time"
)

// ContactMessage - сообщение из формы обратной связи.
type ContactMessage struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	Email     string    `json:"email" db:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone" bson:"phone,omitempty"`
	Message   string    `json:"message" db:"message" bson:"message"`
	IsRead    bool      `json:"isRead" db:"is_read" bson:"isRead"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"max=30"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

// ContactList - ответ со списком сообщений.
type ContactList struct {
	Count    int              `json:"count"`
	Contacts []ContactMessage `json:"contacts"`
}

// ContactReceipt - ответ на отправку формы.
type ContactReceipt struct {
	Message   string `json:"message"`
	ContactID string `json:"contactId"`
}

// ContactUpdate - ответ на изменение статуса сообщения.
type ContactUpdate struct {
	Message string          `json:"message"`
	Contact *ContactMessage `json:"contact"`
}
