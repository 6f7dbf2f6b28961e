package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/identity"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/session"
)

// Identity es el proveedor de autenticación externo.
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*identity.Account, error)
	SignUp(ctx context.Context, email, password, displayName string) (*identity.Account, error)
}

type Sessions interface {
	RoleSessions
	OpenFor(user model.User, idToken string, tokenLifetime time.Duration) (string, *session.Session, error)
	End(id string) bool
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Address   string
	PhotoURL  string
	Photo     io.Reader
	PhotoName string
}

// SignedIn es lo que recibe el cliente al entrar: el token de sesión y su usuario.
type SignedIn struct {
	Token   string      `json:"token"`
	User    model.User  `json:"user"`
	Session SessionInfo `json:"session"`
}

type SessionInfo struct {
	ID        string `json:"id"`
	ExpiresAt string `json:"expiresAt"`
}

// AuthService registra e inicia sesión contra el proveedor y abre la sesión
// del gateway.
type AuthService struct {
	identity Identity
	users    UserStore
	images   ImageUploader
	sessions Sessions
}

func NewAuthService(id Identity, users UserStore, images ImageUploader, sessions Sessions) *AuthService {
	return &AuthService{identity: id, users: users, images: images, sessions: sessions}
}

// Register crea la cuenta en el proveedor y el registro del usuario en el store
// con role=user y userStatus=active.
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*SignedIn, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	acc, err := a.identity.SignUp(ctx, email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}
	// todavía no hay sesión: el token del proveedor va sin id de sesión
	ctx = remote.WithCredential(ctx, remote.Credential{Token: acc.IDToken})

	photo := in.PhotoURL
	if in.Photo != nil {
		url, err := a.images.Upload(ctx, in.PhotoName, in.Photo)
		if err != nil {
			// la cuenta ya existe; la foto se puede subir desde el perfil
			log.Warn().Err(err).Str("email", email).Msg("auth: profile photo upload failed")
		} else {
			photo = url
		}
	}

	user := model.User{
		Email:       email,
		DisplayName: in.Name,
		PhotoURL:    photo,
		Address:     in.Address,
		Role:        model.RoleUser,
		UserStatus:  model.UserActive,
	}
	res, err := a.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = res.InsertedID
	log.Info().Str("email", email).Msg("auth: user registered")
	return a.open(user, acc)
}

// Login valida las credenciales y abre una sesión con el rol guardado en el
// store. Si el usuario no tiene registro (cuenta creada por otro medio) se crea.
func (a *AuthService) Login(ctx context.Context, email, password string) (*SignedIn, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := a.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ctx = remote.WithCredential(ctx, remote.Credential{Token: acc.IDToken})

	u, err := a.users.GetUser(ctx, email)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		user := model.User{
			Email:       email,
			DisplayName: acc.DisplayName,
			Role:        model.RoleUser,
			UserStatus:  model.UserActive,
		}
		res, cerr := a.users.CreateUser(ctx, user)
		if cerr != nil {
			return nil, cerr
		}
		user.ID = res.InsertedID
		u = &user
	case err != nil:
		return nil, err
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	return a.open(*u, acc)
}

func (a *AuthService) Logout(sessionID string) bool {
	return a.sessions.End(sessionID)
}

func (a *AuthService) open(user model.User, acc *identity.Account) (*SignedIn, error) {
	token, s, err := a.sessions.OpenFor(user, acc.IDToken, acc.Lifetime())
	if err != nil {
		return nil, err
	}
	return &SignedIn{
		Token: token,
		User:  user,
		Session: SessionInfo{
			ID:        s.ID,
			ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
