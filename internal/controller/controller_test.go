package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/middleware"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/service"
	"github.com/TusharChow20/project-Chef-Lokal/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Place(ctx context.Context, caller service.Caller, in service.PlaceOrderInput) (*model.Order, bool, error) {
	args := m.Called(ctx, caller, in)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *MockOrderService) ListMine(ctx context.Context, caller service.Caller) ([]lifecycle.OrderView, error) {
	args := m.Called(ctx, caller)
	v, _ := args.Get(0).([]lifecycle.OrderView)
	return v, args.Error(1)
}

func (m *MockOrderService) Summary(ctx context.Context, caller service.Caller) (lifecycle.OrderSummary, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(lifecycle.OrderSummary), args.Error(1)
}

func (m *MockOrderService) ListForChef(ctx context.Context, caller service.Caller) ([]lifecycle.OrderView, error) {
	args := m.Called(ctx, caller)
	v, _ := args.Get(0).([]lifecycle.OrderView)
	return v, args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]model.Order)
	return v, args.Error(1)
}

func (m *MockOrderService) Advance(ctx context.Context, caller service.Caller, orderID string, action lifecycle.Action) (*lifecycle.OrderView, error) {
	args := m.Called(ctx, caller, orderID, action)
	v, _ := args.Get(0).(*lifecycle.OrderView)
	return v, args.Error(1)
}

func (m *MockOrderService) CancelAsAdmin(ctx context.Context, caller service.Caller, orderID string) (*model.Order, error) {
	args := m.Called(ctx, caller, orderID)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) Pay(ctx context.Context, caller service.Caller, orderID string) (model.CheckoutSession, error) {
	args := m.Called(ctx, caller, orderID)
	return args.Get(0).(model.CheckoutSession), args.Error(1)
}

func (m *MockOrderService) VerifyPayment(ctx context.Context, caller service.Caller, sessionID, orderID string) (*model.Payment, error) {
	args := m.Called(ctx, caller, sessionID, orderID)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

func (m *MockOrderService) PaymentHistory(ctx context.Context) ([]model.Payment, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]model.Payment)
	return v, args.Error(1)
}

type fixture struct {
	orders   *MockOrderService
	sessions *session.Manager
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{orders: new(MockOrderService), sessions: session.NewManager("test-secret", time.Hour)}
	t.Cleanup(func() { f.orders.AssertExpectations(t) })

	// solo las rutas de órdenes se ejercitan acá
	f.router = NewRouter(Handlers{
		Auth:      NewAuthController(nil),
		Orders:    NewOrderController(f.orders),
		Meals:     NewMealController(nil),
		Reviews:   NewReviewController(nil),
		Favorites: NewFavoriteController(nil),
		Users:     NewUserController(nil),
		Roles:     NewRoleController(nil),
		Stats:     NewStatsController(nil),
	}, f.sessions)
	return f
}

func (f *fixture) login(t *testing.T, email string, role model.Role) string {
	t.Helper()
	token, _, err := f.sessions.Open(model.User{Email: email, Role: role}, "id-"+email)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var customerCaller = mock.MatchedBy(func(c service.Caller) bool {
	return c.Email == "ana@chef.io" && c.Role == model.RoleUser && c.SessionID != ""
})

func TestOrderController_Place(t *testing.T) {
	validBody := gin.H{"mealId": "m1", "quantity": 2, "address": "House 12, Road 5, Dhanmondi"}

	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "ana@chef.io", model.RoleUser)

		f.orders.On("Place", mock.Anything, customerCaller, service.PlaceOrderInput{
			MealID: "m1", Quantity: 2, Address: "House 12, Road 5, Dhanmondi", IdempotencyKey: "k-1",
		}).Return(&model.Order{ID: "o1", OrderStatus: model.OrderPending, PaymentStatus: model.PaymentPending}, false, nil).Once()

		w := f.do(http.MethodPost, "/orders", token, validBody, IdempotencyHeader, "k-1")
		require.Equal(t, http.StatusCreated, w.Code)

		var o model.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
		assert.Equal(t, "o1", o.ID)
		assert.Equal(t, model.OrderPending, o.OrderStatus)
	})

	t.Run("replay_returns_200", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "ana@chef.io", model.RoleUser)

		f.orders.On("Place", mock.Anything, customerCaller, mock.Anything).
			Return(&model.Order{ID: "o1"}, true, nil).Once()

		w := f.do(http.MethodPost, "/orders", token, validBody, IdempotencyHeader, "k-1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("short_address_rejected_by_binding", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "ana@chef.io", model.RoleUser)

		w := f.do(http.MethodPost, "/orders", token, gin.H{"mealId": "m1", "quantity": 1, "address": "Dhaka"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.orders.AssertNotCalled(t, "Place", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no_session_redirects", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/orders", "", validBody)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, middleware.LoginPath, errorBody(t, w)["redirect"])
	})
}

func TestOrderController_Advance(t *testing.T) {
	t.Run("customer_cannot_reach_chef_routes", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "ana@chef.io", model.RoleUser)

		w := f.do(http.MethodPatch, "/chef/orders/o1", token, gin.H{"action": "accept"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown_action", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "raj@chef.io", model.RoleChef)

		w := f.do(http.MethodPatch, "/chef/orders/o1", token, gin.H{"action": "ship"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deliver_unpaid_is_unprocessable", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "raj@chef.io", model.RoleChef)

		f.orders.On("Advance", mock.Anything, mock.Anything, "o1", lifecycle.ActionDeliver).
			Return(nil, lifecycle.ErrPaymentRequired).Once()

		w := f.do(http.MethodPatch, "/chef/orders/o1", token, gin.H{"action": "deliver"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, lifecycle.ErrPaymentRequired.Error(), errorBody(t, w)["error"])
	})

	t.Run("accepted", func(t *testing.T) {
		f := newFixture(t)
		token := f.login(t, "raj@chef.io", model.RoleChef)

		view := lifecycle.ChefView(model.Order{ID: "o1", OrderStatus: model.OrderAccepted, PaymentStatus: model.PaymentPending})
		f.orders.On("Advance", mock.Anything, mock.MatchedBy(func(c service.Caller) bool {
			return c.Role == model.RoleChef
		}), "o1", lifecycle.ActionAccept).Return(&view, nil).Once()

		w := f.do(http.MethodPatch, "/chef/orders/o1", token, gin.H{"action": "accept"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderController_Admin(t *testing.T) {
	f := newFixture(t)
	userToken := f.login(t, "ana@chef.io", model.RoleUser)
	adminToken := f.login(t, "root@chef.io", model.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/admin/orders", userToken, nil).Code)

	f.orders.On("ListAll", mock.Anything).Return([]model.Order{{ID: "o1"}, {ID: "o2"}}, nil).Once()
	w := f.do(http.MethodGet, "/admin/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
}

func TestOrderController_RevokedSession(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "ana@chef.io", model.RoleUser)

	s, err := f.sessions.Resolve(token)
	require.NoError(t, err)
	f.sessions.End(s.ID)

	w := f.do(http.MethodGet, "/orders/mine", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.LoginPath, errorBody(t, w)["redirect"])
}

func TestSplitIngredients(t *testing.T) {
	assert.Equal(t, []string{"rice", "chicken", "onion"}, splitIngredients([]string{"rice, chicken", " onion "}))
	assert.Empty(t, splitIngredients(nil))
}
