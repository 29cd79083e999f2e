package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// CommentService - комментарии к работам. Ответы содержат имя автора.
type CommentService struct {
	comments store.CommentStore
	works    store.WorkStore
	users    store.UserStore
	lookup   WorkLookup
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCommentService(comments store.CommentStore, works store.WorkStore, users store.UserStore, lookup WorkLookup, v *validator.Validate, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, works: works, users: users, lookup: lookup, validate: v, logger: logger}
}

func (s *CommentService) AddComment(ctx context.Context, userID string, req domain.CommentRequest) (*domain.Comment, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	workID := strings.TrimSpace(req.WorkID)
	exists, err := s.lookup.WorkExists(ctx, workID)
	if err != nil {
		return nil, domain.DependencyFailed("Failed to check work", err)
	}
	if !exists {
		return nil, domain.ErrWorkNotFound
	}

	comment := &domain.Comment{
		ID:     uuid.NewString(),
		UserID: userID,
		WorkID: workID,
		Text:   strings.TrimSpace(req.Text),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, translate(err)
	}
	s.enrich(ctx, []*domain.Comment{comment})
	s.logger.InfoContext(ctx, "Comment added", slog.String("commentID", comment.ID), slog.String("workID", workID))
	return comment, nil
}

func (s *CommentService) ForWork(ctx context.Context, workID string) ([]*domain.Comment, error) {
	return s.enriched(ctx)(s.comments.ListByWork(ctx, workID))
}

// ForPublisher - комментарии ко всем работам издателя.
func (s *CommentService) ForPublisher(ctx context.Context, publisherID string) ([]*domain.Comment, error) {
	ids, err := s.works.IDsByOwner(ctx, publisherID)
	if err != nil {
		return nil, translate(err)
	}
	return s.enriched(ctx)(s.comments.ListByWorkIDs(ctx, ids))
}

func (s *CommentService) All(ctx context.Context) ([]*domain.Comment, error) {
	return s.enriched(ctx)(s.comments.ListAll(ctx))
}

func (s *CommentService) Delete(ctx context.Context, commentID string) error {
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return translate(err)
	}
	s.logger.InfoContext(ctx, "Comment deleted", slog.String("commentID", commentID))
	return nil
}

func (s *CommentService) enriched(ctx context.Context) func([]*domain.Comment, error) ([]*domain.Comment, error) {
	return func(comments []*domain.Comment, err error) ([]*domain.Comment, error) {
		if err != nil {
			return nil, translate(err)
		}
		s.enrich(ctx, comments)
		return comments, nil
	}
}

// enrich подставляет имена авторов; удаленные пользователи пропускаются.
func (s *CommentService) enrich(ctx context.Context, comments []*domain.Comment) {
	names := make(map[string]string)
	for _, c := range comments {
		name, seen := names[c.UserID]
		if !seen {
			if u, err := s.users.GetByID(ctx, c.UserID); err == nil {
				name = u.Username
			} else {
				s.logger.DebugContext(ctx, "Comment author not found", slog.String("userID", c.UserID))
			}
			names[c.UserID] = name
		}
		c.Username = name
	}
}
