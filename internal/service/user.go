package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docpress/internal/model"
	"docpress/internal/repository"
)

// SyncUserInput is the identity asserted by a verified token.
type SyncUserInput struct {
	ExternalID string
	Email      string
	FullName   string
}

type UserService interface {
	// Sync records the caller so documents can show an author byline.
	Sync(ctx context.Context, in SyncUserInput) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Sync(ctx context.Context, in SyncUserInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.ExternalID, validation.Required),
	); err != nil {
		return nil, validationError(err)
	}
	return s.users.Upsert(ctx, &model.User{
		ExternalID: in.ExternalID,
		Email:      in.Email,
		FullName:   in.FullName,
	})
}
