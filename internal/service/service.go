package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/repository"
)

// Errores de negocio exportados (los usa el controller)
var (
	ErrForbidden            = errors.New("forbidden")
	ErrOrderNotFound        = errors.New("order not found")
	ErrRequestNotFound      = errors.New("role request not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrFavoriteNotFound     = errors.New("favorite not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrMealNotFound         = errors.New("meal not found")
	ErrNotChef              = errors.New("user has no chef id")
	ErrAlreadyFavorite      = errors.New("meal is already in favorites")
	ErrImageRequired        = errors.New("please upload a food image")
	ErrSubmissionInProgress = errors.New("an identical submission is still being processed")
	ErrDecisionRolledBack   = errors.New("decision could not be completed and was rolled back")
	ErrDecisionIncomplete   = errors.New("decision left incomplete, queued for recovery")
	ErrPaymentNotVerified   = errors.New("payment could not be verified")
)

// Caller es el usuario de la sesión que hace el request.
type Caller struct {
	SessionID string
	Email     string
	Name      string
	Role      model.Role
}

// Interfaces que implementa remote.Client, una por área.

type UserStore interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	GetUserRole(ctx context.Context, email string) (model.Role, error)
	CreateUser(ctx context.Context, u model.User) (model.InsertResult, error)
	UpdateUser(ctx context.Context, email string, patch remote.UserPatch) (model.UpdateResult, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o model.Order) (model.InsertResult, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]model.Order, error)
	ListOrdersByChef(ctx context.Context, chefID string) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.UpdateResult, error)
}

type PaymentStore interface {
	CreateCheckoutSession(ctx context.Context, r remote.CheckoutRequest) (model.CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID, orderID string) (model.PaymentVerification, error)
	PaymentHistory(ctx context.Context) ([]model.Payment, error)
}

type MealStore interface {
	ListMeals(ctx context.Context, q remote.MealQuery) (model.MealPage, error)
	GetMeal(ctx context.Context, id string) (*model.Meal, error)
	ListChefMeals(ctx context.Context, chefID string) ([]model.Meal, error)
	CreateMeal(ctx context.Context, m model.Meal) (model.InsertResult, error)
	UpdateMeal(ctx context.Context, id string, m model.Meal) (model.UpdateResult, error)
	DeleteMeal(ctx context.Context, id string) (model.DeleteResult, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, r model.Review) (model.InsertResult, error)
	ListReviews(ctx context.Context) ([]model.Review, error)
	ListReviewsByUser(ctx context.Context, email string) ([]model.Review, error)
	ListReviewsByMeal(ctx context.Context, mealID string) ([]model.Review, error)
	UpdateReview(ctx context.Context, id string, patch remote.ReviewPatch) (model.UpdateResult, error)
	DeleteReview(ctx context.Context, id string) (model.DeleteResult, error)
}

type FavoriteStore interface {
	FindFavorites(ctx context.Context, email, mealID string) ([]model.Favorite, error)
	ListFavorites(ctx context.Context, email string) ([]model.Favorite, error)
	CreateFavorite(ctx context.Context, f model.Favorite) (model.InsertResult, error)
	DeleteFavorite(ctx context.Context, id string) (model.DeleteResult, error)
}

type RoleRequestStore interface {
	CreateRoleRequest(ctx context.Context, r model.RoleChangeRequest) (model.InsertResult, error)
	ListRoleRequestsByUser(ctx context.Context, email string) ([]model.RoleChangeRequest, error)
	ListRoleRequests(ctx context.Context) ([]model.RoleChangeRequest, error)
	DeleteRoleRequest(ctx context.Context, id string) (model.DeleteResult, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Interfaces que deben implementar los repositorios Mongo

type SagaRepository interface {
	Create(ctx context.Context, s *model.RoleSaga) error
	AppendStep(ctx context.Context, id string, step model.SagaStep) error
	SetState(ctx context.Context, id string, state model.SagaState) error
	Claim(ctx context.Context, id string, from model.SagaState, notAfter time.Time) (bool, error)
	FindByState(ctx context.Context, states ...model.SagaState) ([]*model.RoleSaga, error)
	FindAll(ctx context.Context, limit int64) ([]*model.RoleSaga, error)
}

type IdempotencyRepository interface {
	Reserve(ctx context.Context, k *model.IdempotencyKey) (*model.IdempotencyKey, error)
	Complete(ctx context.Context, key, resourceID string) error
	Release(ctx context.Context, key string) error
}

// Cache keys
const (
	keyOrders       = "orders"
	keyMeals        = "meals"
	keyMeal         = "meal"
	keyReviews      = "reviews"
	keyFavorites    = "favorites"
	keyUsers        = "users"
	keyRoleRequests = "role_requests"
	keyPayments     = "payments"
	keyStats        = "stats"
)

// Invalidator drops query-cache keys after a successful mutation, locally and,
// through the bus, on every other gateway instance.
type Invalidator struct {
	cache *cache.Cache
	pub   events.Publisher
}

func NewInvalidator(c *cache.Cache, pub events.Publisher) *Invalidator {
	return &Invalidator{cache: c, pub: pub}
}

func (i *Invalidator) Invalidate(ctx context.Context, keys ...string) {
	if i == nil || len(keys) == 0 {
		return
	}
	if i.cache != nil {
		i.cache.Invalidate(keys...)
	}
	if i.pub == nil {
		return
	}
	err := i.pub.Publish(context.WithoutCancel(ctx), events.Event{Kind: events.CacheInvalidate, Keys: keys})
	if err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("service: failed to publish cache invalidation")
	}
}

// fetch lee a través del cache cuando hay uno configurado.
func fetch[T any](ctx context.Context, c *cache.Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	return cache.Fetch(ctx, c, key, load)
}

// scopedKey es la clave guardada: la misma key del cliente en otra área o de
// otro usuario es otra reserva.
func scopedKey(scope, owner, key string) string {
	return scope + ":" + owner + ":" + key
}

// once runs create at most once per idempotency key within scope and owner. A
// replayed key returns the id of the record created the first time.
func once(ctx context.Context, keys IdempotencyRepository, clientKey, scope, owner string, create func() (string, error)) (id string, replayed bool, err error) {
	if keys == nil || clientKey == "" {
		id, err = create()
		return id, false, err
	}
	key := scopedKey(scope, owner, clientKey)

	existing, err := keys.Reserve(ctx, &model.IdempotencyKey{Key: key, Scope: scope, Owner: owner})
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		if existing == nil || existing.ResourceID == "" {
			return "", false, ErrSubmissionInProgress
		}
		if existing.Owner != owner || existing.Scope != scope {
			return "", false, ErrForbidden
		}
		log.Info().Str("key", key).Str("scope", scope).Str("resource_id", existing.ResourceID).Msg("service: replayed submission")
		return existing.ResourceID, true, nil
	case err != nil:
		// sin el store de claves se sigue sin protección contra duplicados
		log.Warn().Err(err).Str("key", key).Str("scope", scope).Msg("service: idempotency store unavailable")
		id, err = create()
		return id, false, err
	}

	id, err = create()
	if err != nil {
		if rerr := keys.Release(context.WithoutCancel(ctx), key); rerr != nil {
			log.Error().Err(rerr).Str("key", key).Msg("service: failed to release idempotency key")
		}
		return "", false, err
	}
	if cerr := keys.Complete(context.WithoutCancel(ctx), key, id); cerr != nil {
		log.Error().Err(cerr).Str("key", key).Msg("service: failed to complete idempotency key")
	}
	return id, false, nil
}

// mapNotFound traduce el 404 del store al error de negocio del área.
func mapNotFound(err, target error) error {
	if errors.Is(err, remote.ErrNotFound) {
		return target
	}
	return err
}

// loadUser trae el registro del usuario; lo usan los gates de fraude y rol.
func loadUser(ctx context.Context, users UserStore, c *cache.Cache, email string) (*model.User, error) {
	u, err := fetch(ctx, c, cache.Key(keyUsers, email), func(ctx context.Context) (*model.User, error) {
		return users.GetUser(ctx, email)
	})
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return u, nil
}
