package service_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/TusharChow20/project-Chef-Lokal/internal/identity"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/session"
)

type MockUsers struct{ mock.Mock }

func (m *MockUsers) GetUser(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsers) GetUserRole(ctx context.Context, email string) (model.Role, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Role), args.Error(1)
}

func (m *MockUsers) CreateUser(ctx context.Context, u model.User) (model.InsertResult, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.InsertResult), args.Error(1)
}

func (m *MockUsers) UpdateUser(ctx context.Context, email string, patch remote.UserPatch) (model.UpdateResult, error) {
	args := m.Called(ctx, email, patch)
	return args.Get(0).(model.UpdateResult), args.Error(1)
}

func (m *MockUsers) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

type MockOrders struct{ mock.Mock }

func (m *MockOrders) CreateOrder(ctx context.Context, o model.Order) (model.InsertResult, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(model.InsertResult), args.Error(1)
}

func (m *MockOrders) ListOrdersByEmail(ctx context.Context, email string) ([]model.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrders) ListOrdersByChef(ctx context.Context, chefID string) ([]model.Order, error) {
	args := m.Called(ctx, chefID)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrders) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrders) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.UpdateResult, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(model.UpdateResult), args.Error(1)
}

type MockPayments struct{ mock.Mock }

func (m *MockPayments) CreateCheckoutSession(ctx context.Context, r remote.CheckoutRequest) (model.CheckoutSession, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.CheckoutSession), args.Error(1)
}

func (m *MockPayments) VerifyPayment(ctx context.Context, sessionID, orderID string) (model.PaymentVerification, error) {
	args := m.Called(ctx, sessionID, orderID)
	return args.Get(0).(model.PaymentVerification), args.Error(1)
}

func (m *MockPayments) PaymentHistory(ctx context.Context) ([]model.Payment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Payment), args.Error(1)
}

type MockMeals struct{ mock.Mock }

func (m *MockMeals) ListMeals(ctx context.Context, q remote.MealQuery) (model.MealPage, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(model.MealPage), args.Error(1)
}

func (m *MockMeals) GetMeal(ctx context.Context, id string) (*model.Meal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meal), args.Error(1)
}

func (m *MockMeals) ListChefMeals(ctx context.Context, chefID string) ([]model.Meal, error) {
	args := m.Called(ctx, chefID)
	return args.Get(0).([]model.Meal), args.Error(1)
}

func (m *MockMeals) CreateMeal(ctx context.Context, meal model.Meal) (model.InsertResult, error) {
	args := m.Called(ctx, meal)
	return args.Get(0).(model.InsertResult), args.Error(1)
}

func (m *MockMeals) UpdateMeal(ctx context.Context, id string, meal model.Meal) (model.UpdateResult, error) {
	args := m.Called(ctx, id, meal)
	return args.Get(0).(model.UpdateResult), args.Error(1)
}

func (m *MockMeals) DeleteMeal(ctx context.Context, id string) (model.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DeleteResult), args.Error(1)
}

type MockReviews struct{ mock.Mock }

func (m *MockReviews) CreateReview(ctx context.Context, r model.Review) (model.InsertResult, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.InsertResult), args.Error(1)
}

func (m *MockReviews) ListReviews(ctx context.Context) ([]model.Review, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Review), args.Error(1)
}

func (m *MockReviews) ListReviewsByUser(ctx context.Context, email string) ([]model.Review, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]model.Review), args.Error(1)
}

func (m *MockReviews) ListReviewsByMeal(ctx context.Context, mealID string) ([]model.Review, error) {
	args := m.Called(ctx, mealID)
	return args.Get(0).([]model.Review), args.Error(1)
}

func (m *MockReviews) UpdateReview(ctx context.Context, id string, patch remote.ReviewPatch) (model.UpdateResult, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.UpdateResult), args.Error(1)
}

func (m *MockReviews) DeleteReview(ctx context.Context, id string) (model.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DeleteResult), args.Error(1)
}

type MockFavorites struct{ mock.Mock }

func (m *MockFavorites) FindFavorites(ctx context.Context, email, mealID string) ([]model.Favorite, error) {
	args := m.Called(ctx, email, mealID)
	return args.Get(0).([]model.Favorite), args.Error(1)
}

func (m *MockFavorites) ListFavorites(ctx context.Context, email string) ([]model.Favorite, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]model.Favorite), args.Error(1)
}

func (m *MockFavorites) CreateFavorite(ctx context.Context, f model.Favorite) (model.InsertResult, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(model.InsertResult), args.Error(1)
}

func (m *MockFavorites) DeleteFavorite(ctx context.Context, id string) (model.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DeleteResult), args.Error(1)
}

type MockRequests struct{ mock.Mock }

func (m *MockRequests) CreateRoleRequest(ctx context.Context, r model.RoleChangeRequest) (model.InsertResult, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.InsertResult), args.Error(1)
}

func (m *MockRequests) ListRoleRequestsByUser(ctx context.Context, email string) ([]model.RoleChangeRequest, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]model.RoleChangeRequest), args.Error(1)
}

func (m *MockRequests) ListRoleRequests(ctx context.Context) ([]model.RoleChangeRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.RoleChangeRequest), args.Error(1)
}

func (m *MockRequests) DeleteRoleRequest(ctx context.Context, id string) (model.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DeleteResult), args.Error(1)
}

type MockImages struct{ mock.Mock }

func (m *MockImages) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	args := m.Called(ctx, filename, image)
	return args.String(0), args.Error(1)
}

type MockSagas struct{ mock.Mock }

func (m *MockSagas) Create(ctx context.Context, s *model.RoleSaga) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSagas) AppendStep(ctx context.Context, id string, step model.SagaStep) error {
	return m.Called(ctx, id, step).Error(0)
}

func (m *MockSagas) SetState(ctx context.Context, id string, state model.SagaState) error {
	return m.Called(ctx, id, state).Error(0)
}

func (m *MockSagas) Claim(ctx context.Context, id string, from model.SagaState, notAfter time.Time) (bool, error) {
	args := m.Called(ctx, id, from, notAfter)
	return args.Bool(0), args.Error(1)
}

func (m *MockSagas) FindByState(ctx context.Context, states ...model.SagaState) ([]*model.RoleSaga, error) {
	args := m.Called(ctx, states)
	return args.Get(0).([]*model.RoleSaga), args.Error(1)
}

func (m *MockSagas) FindAll(ctx context.Context, limit int64) ([]*model.RoleSaga, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*model.RoleSaga), args.Error(1)
}

type MockKeys struct{ mock.Mock }

func (m *MockKeys) Reserve(ctx context.Context, k *model.IdempotencyKey) (*model.IdempotencyKey, error) {
	args := m.Called(ctx, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IdempotencyKey), args.Error(1)
}

func (m *MockKeys) Complete(ctx context.Context, key, resourceID string) error {
	return m.Called(ctx, key, resourceID).Error(0)
}

func (m *MockKeys) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockIdentity struct{ mock.Mock }

func (m *MockIdentity) SignIn(ctx context.Context, email, password string) (*identity.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockIdentity) SignUp(ctx context.Context, email, password, displayName string) (*identity.Account, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

type MockSessions struct{ mock.Mock }

func (m *MockSessions) OpenFor(user model.User, idToken string, tokenLifetime time.Duration) (string, *session.Session, error) {
	args := m.Called(user, idToken, tokenLifetime)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*session.Session), args.Error(2)
}

func (m *MockSessions) End(id string) bool {
	return m.Called(id).Bool(0)
}

func (m *MockSessions) UpdateRole(email string, role model.Role) int {
	return m.Called(email, role).Int(0)
}
