package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MongoUserStore реализует UserStore для MongoDB. Email хранится в нижнем регистре.
type MongoUserStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoUserStore) Create(ctx context.Context, user *domain.User) error {
	user.Email = emailKey(user.Email)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.logger.WarnContext(ctx, "Attempted to create user with existing email", slog.String("email", user.Email))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create user in MongoDB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created in MongoDB", slog.String("userID", user.ID))
	return nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to query user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	return &user, nil
}

func (s *MongoUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": userID})
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": emailKey(email)})
}

func (s *MongoUserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": emailKey(email)},
		bson.M{"username": username},
	}})
}

func (s *MongoUserStore) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := s.col.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return decodeAll[domain.User](ctx, cur)
}

func (s *MongoUserStore) Update(ctx context.Context, user *domain.User) error {
	user.Email = emailKey(user.Email)
	user.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"username":  user.Username,
		"email":     user.Email,
		"password":  user.PasswordHash,
		"role":      user.Role,
		"updatedAt": user.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if user.ProfileImage != nil {
		set["profileImage"] = user.ProfileImage
	} else {
		update["$unset"] = bson.M{"profileImage": ""}
	}

	res, err := s.col.UpdateByID(ctx, user.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to update user", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectMatched(res.MatchedCount, ErrUserNotFound)
}

func (s *MongoUserStore) Delete(ctx context.Context, userID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectMatched(res.DeletedCount, ErrUserNotFound)
}

func (s *MongoUserStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	res, err := s.col.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"resetPasswordToken":   tokenHash,
		"resetPasswordExpires": expiresAt.UTC(),
	}})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store reset token", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return expectMatched(res.MatchedCount, ErrUserNotFound)
}

// ConsumeResetToken использует FindOneAndUpdate: повторное использование токена невозможно,
// так как фильтр и очистка выполняются одной операцией.
func (s *MongoUserStore) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, ErrResetTokenNotFound
	}
	filter := bson.M{
		"resetPasswordToken":   tokenHash,
		"resetPasswordExpires": bson.M{"$gt": now.UTC()},
	}
	update := bson.M{
		"$set":   bson.M{"password": newPasswordHash, "updatedAt": now.UTC()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrResetTokenNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to consume reset token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return &user, nil
}

// AddFavorite: фильтр $ne делает проверку и добавление одной атомарной операцией.
func (s *MongoUserStore) AddFavorite(ctx context.Context, userID, workID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID, "favorites": bson.M{"$ne": workID}},
		bson.M{"$addToSet": bson.M{"favorites": workID}},
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add favorite", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missingUserOr(ctx, userID, ErrAlreadyFavorite)
}

func (s *MongoUserStore) RemoveFavorite(ctx context.Context, userID, workID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID, "favorites": workID},
		bson.M{"$pull": bson.M{"favorites": workID}},
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove favorite", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	return s.missingUserOr(ctx, userID, ErrNotFavorite)
}

func (s *MongoUserStore) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	var doc struct {
		Favorites []string `bson:"favorites"`
	}
	opts := options.FindOne().SetProjection(bson.M{"favorites": 1})
	if err := s.col.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if doc.Favorites == nil {
		return []string{}, nil
	}
	return doc.Favorites, nil
}

func (s *MongoUserStore) IsFavorite(ctx context.Context, userID, workID string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": userID, "favorites": workID})
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	if err := s.missingUserOr(ctx, userID, nil); err != nil {
		return false, err
	}
	return false, nil
}

// missingUserOr возвращает ErrUserNotFound, если пользователя нет, иначе fallback.
func (s *MongoUserStore) missingUserOr(ctx context.Context, userID string, fallback error) error {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return fallback
}
