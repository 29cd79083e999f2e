package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/notify"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// ContactService - форма обратной связи. Inbox - адрес для уведомлений,
// пустой адрес отключает отправку.
type ContactService struct {
	contacts store.ContactStore
	notifier notify.Notifier
	inbox    string
	validate *validator.Validate
	logger   *slog.Logger
}

func NewContactService(contacts store.ContactStore, notifier notify.Notifier, inbox string, v *validator.Validate, logger *slog.Logger) *ContactService {
	return &ContactService{contacts: contacts, notifier: notifier, inbox: strings.TrimSpace(inbox), validate: v, logger: logger}
}

// Submit сохраняет сообщение и отправляет уведомление. Ошибка отправки не влияет на ответ.
func (s *ContactService) Submit(ctx context.Context, req domain.ContactRequest) (*domain.ContactReceipt, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	msg := &domain.ContactMessage{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "Contact message received", slog.String("contactID", msg.ID))

	if s.inbox != "" {
		if err := s.notifier.Send(ctx, notify.ContactMessage(s.inbox, msg)); err != nil {
			s.logger.WarnContext(ctx, "Failed to send contact notification", slog.String("contactID", msg.ID), slog.String("error", err.Error()))
		}
	}
	return &domain.ContactReceipt{
		Message:   "Thank you for contacting us! We will get back to you soon.",
		ContactID: msg.ID,
	}, nil
}

func (s *ContactService) List(ctx context.Context) (*domain.ContactList, error) {
	return s.list(ctx, false)
}

func (s *ContactService) ListUnread(ctx context.Context) (*domain.ContactList, error) {
	return s.list(ctx, true)
}

func (s *ContactService) list(ctx context.Context, unreadOnly bool) (*domain.ContactList, error) {
	msgs, err := s.contacts.List(ctx, unreadOnly)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.ContactMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, *m)
	}
	return &domain.ContactList{Count: len(out), Contacts: out}, nil
}

func (s *ContactService) Get(ctx context.Context, contactID string) (*domain.ContactMessage, error) {
	msg, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, translate(err)
	}
	return msg, nil
}

func (s *ContactService) MarkRead(ctx context.Context, contactID string) (*domain.ContactUpdate, error) {
	msg, err := s.contacts.MarkRead(ctx, contactID)
	if err != nil {
		return nil, translate(err)
	}
	return &domain.ContactUpdate{Message: "Contact message marked as read", Contact: msg}, nil
}

func (s *ContactService) Delete(ctx context.Context, contactID string) error {
	if err := s.contacts.Delete(ctx, contactID); err != nil {
		return translate(err)
	}
	s.logger.InfoContext(ctx, "Contact message deleted", slog.String("contactID", contactID))
	return nil
}
