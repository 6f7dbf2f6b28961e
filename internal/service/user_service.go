package service

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

type ProfileInput struct {
	DisplayName *string
	Address     *string
	Photo       io.Reader
	PhotoName   string
}

type UserService struct {
	users    UserStore
	images   ImageUploader
	sessions RoleSessions
	cache    *cache.Cache
	inv      *Invalidator
}

func NewUserService(users UserStore, images ImageUploader, sessions RoleSessions, c *cache.Cache, inv *Invalidator) *UserService {
	return &UserService{users: users, images: images, sessions: sessions, cache: c, inv: inv}
}

func (s *UserService) Profile(ctx context.Context, caller Caller) (*model.User, error) {
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return nil, err
	}
	out := *u
	return &out, nil
}

// Role consulta el rol actual en el store y lo sincroniza con la sesión.
func (s *UserService) Role(ctx context.Context, caller Caller) (model.Role, error) {
	role, err := s.users.GetUserRole(ctx, caller.Email)
	if err != nil {
		return "", mapNotFound(err, ErrUserNotFound)
	}
	if role == "" {
		role = model.RoleUser
	}
	if role != caller.Role && s.sessions != nil {
		s.sessions.UpdateRole(caller.Email, role)
	}
	return role, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller Caller, in ProfileInput) (*model.User, error) {
	patch := remote.UserPatch{DisplayName: in.DisplayName, Address: in.Address}
	if in.Photo != nil {
		url, err := s.images.Upload(ctx, in.PhotoName, in.Photo)
		if err != nil {
			return nil, err
		}
		patch.PhotoURL = &url
	}
	if _, err := s.users.UpdateUser(ctx, caller.Email, patch); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	s.inv.Invalidate(ctx, cache.Key(keyUsers, caller.Email), cache.Key(keyUsers, "all"))
	return s.Profile(ctx, caller)
}

func (s *UserService) ListAll(ctx context.Context) ([]model.User, error) {
	return fetch(ctx, s.cache, cache.Key(keyUsers, "all"), func(ctx context.Context) ([]model.User, error) {
		return s.users.ListUsers(ctx)
	})
}

// MarkFraud flags a user. Admins and already-flagged users cannot be flagged.
func (s *UserService) MarkFraud(ctx context.Context, caller Caller, email string) (*model.User, error) {
	target, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if err := lifecycle.CanMarkFraud(*target); err != nil {
		return nil, err
	}
	status := model.UserFraud
	if _, err := s.users.UpdateUser(ctx, email, remote.UserPatch{UserStatus: &status}); err != nil {
		return nil, err
	}
	log.Info().Str("user", email).Str("by", caller.Email).Msg("user: marked as fraud")
	s.inv.Invalidate(ctx, cache.Key(keyUsers, email), cache.Key(keyUsers, "all"))

	out := *target
	out.UserStatus = model.UserFraud
	return &out, nil
}
