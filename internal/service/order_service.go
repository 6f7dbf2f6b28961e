package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/events"
	"github.com/TusharChow20/project-Chef-Lokal/internal/lifecycle"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
)

type PlaceOrderInput struct {
	MealID         string
	Quantity       int
	Address        string
	IdempotencyKey string
}

type OrderService struct {
	orders   OrderStore
	payments PaymentStore
	meals    MealStore
	users    UserStore
	keys     IdempotencyRepository
	cache    *cache.Cache
	inv      *Invalidator
	pub      events.Publisher
}

func NewOrderService(orders OrderStore, payments PaymentStore, meals MealStore, users UserStore, keys IdempotencyRepository, c *cache.Cache, inv *Invalidator, pub events.Publisher) *OrderService {
	return &OrderService{orders: orders, payments: payments, meals: meals, users: users, keys: keys, cache: c, inv: inv, pub: pub}
}

// Place crea la orden en pending/pending. El precio y el chef salen del
// registro de la comida, no del request.
func (s *OrderService) Place(ctx context.Context, caller Caller, in PlaceOrderInput) (*model.Order, bool, error) {
	if in.Quantity < lifecycle.MinOrderQuantity {
		return nil, false, lifecycle.ErrInvalidQuantity
	}
	meal, err := s.meals.GetMeal(ctx, in.MealID)
	if err != nil {
		return nil, false, mapNotFound(err, ErrMealNotFound)
	}

	order := model.Order{
		FoodID:        meal.ID,
		MealName:      meal.FoodName,
		Price:         meal.Price,
		Quantity:      in.Quantity,
		ChefID:        meal.ChefID,
		ChefName:      meal.ChefName,
		UserEmail:     caller.Email,
		UserAddress:   in.Address,
		OrderStatus:   model.OrderPending,
		PaymentStatus: model.PaymentPending,
		OrderTime:     time.Now().UTC(),
	}

	id, replayed, err := once(ctx, s.keys, in.IdempotencyKey, "order", caller.Email, func() (string, error) {
		res, err := s.orders.CreateOrder(ctx, order)
		return res.InsertedID, err
	})
	if err != nil {
		return nil, false, err
	}
	if replayed {
		stored, err := s.storedOrder(ctx, caller, id)
		if err != nil {
			return nil, false, err
		}
		return stored, true, nil
	}
	order.ID = id

	log.Info().Str("order_id", id).Str("user", caller.Email).Str("meal_id", meal.ID).Int("quantity", in.Quantity).Msg("order: placed")
	s.inv.Invalidate(ctx, userOrdersKey(caller.Email), chefOrdersKey(meal.ChefID), cache.Key(keyOrders, "all"), keyStats)
	return &order, false, nil
}

// storedOrder relee la orden creada la primera vez, así un reintento devuelve
// lo que quedó guardado y no el body del reintento.
func (s *OrderService) storedOrder(ctx context.Context, caller Caller, id string) (*model.Order, error) {
	orders, err := s.orders.ListOrdersByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	o, ok := findOrder(orders, id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func userOrdersKey(email string) string { return cache.Key(keyOrders, "user", email) }
func chefOrdersKey(chefID string) string { return cache.Key(keyOrders, "chef", chefID) }

// ListMine devuelve las órdenes del cliente con sus acciones (pagar).
func (s *OrderService) ListMine(ctx context.Context, caller Caller) ([]lifecycle.OrderView, error) {
	orders, err := fetch(ctx, s.cache, userOrdersKey(caller.Email), func(ctx context.Context) ([]model.Order, error) {
		return s.orders.ListOrdersByEmail(ctx, caller.Email)
	})
	if err != nil {
		return nil, err
	}
	out := make([]lifecycle.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, lifecycle.CustomerView(o))
	}
	return out, nil
}

// Summary agrupa las órdenes del cliente por estado.
func (s *OrderService) Summary(ctx context.Context, caller Caller) (lifecycle.OrderSummary, error) {
	orders, err := fetch(ctx, s.cache, userOrdersKey(caller.Email), func(ctx context.Context) ([]model.Order, error) {
		return s.orders.ListOrdersByEmail(ctx, caller.Email)
	})
	if err != nil {
		return lifecycle.OrderSummary{}, err
	}
	return lifecycle.Summarize(orders), nil
}

// ListForChef devuelve las órdenes recibidas por el chef con sus acciones.
func (s *OrderService) ListForChef(ctx context.Context, caller Caller) ([]lifecycle.OrderView, error) {
	chefID, err := s.chefID(ctx, caller)
	if err != nil {
		return nil, err
	}
	orders, err := fetch(ctx, s.cache, chefOrdersKey(chefID), func(ctx context.Context) ([]model.Order, error) {
		return s.orders.ListOrdersByChef(ctx, chefID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]lifecycle.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, lifecycle.ChefView(o))
	}
	return out, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return fetch(ctx, s.cache, cache.Key(keyOrders, "all"), func(ctx context.Context) ([]model.Order, error) {
		return s.orders.ListAllOrders(ctx)
	})
}

func (s *OrderService) chefID(ctx context.Context, caller Caller) (string, error) {
	u, err := loadUser(ctx, s.users, s.cache, caller.Email)
	if err != nil {
		return "", err
	}
	if u.ChefID == "" {
		return "", ErrNotChef
	}
	return u.ChefID, nil
}

// Advance aplica una acción del chef (accept, prepare, deliver, cancel).
// La orden se relee del store, nunca del cache.
func (s *OrderService) Advance(ctx context.Context, caller Caller, orderID string, action lifecycle.Action) (*lifecycle.OrderView, error) {
	to, ok := action.TargetStatus()
	if !ok {
		return nil, fmt.Errorf("%w: action %q", lifecycle.ErrInvalidTransition, action)
	}
	chefID, err := s.chefID(ctx, caller)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrdersByChef(ctx, chefID)
	if err != nil {
		return nil, err
	}
	o, ok := findOrder(orders, orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	updated, err := s.transition(ctx, o, to, lifecycle.ActorChef, caller.Email)
	if err != nil {
		return nil, err
	}
	view := lifecycle.ChefView(updated)
	return &view, nil
}

// CancelAsAdmin cancela una orden aceptada desde el panel de administración.
func (s *OrderService) CancelAsAdmin(ctx context.Context, caller Caller, orderID string) (*model.Order, error) {
	orders, err := s.orders.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	o, ok := findOrder(orders, orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	updated, err := s.transition(ctx, o, model.OrderCancelled, lifecycle.ActorAdmin, caller.Email)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *OrderService) transition(ctx context.Context, o model.Order, to model.OrderStatus, actor lifecycle.Actor, actorEmail string) (model.Order, error) {
	if err := lifecycle.CheckOrderTransition(o, to, actor); err != nil {
		return o, err
	}
	if _, err := s.orders.UpdateOrderStatus(ctx, o.ID, to); err != nil {
		return o, mapNotFound(err, ErrOrderNotFound)
	}

	from := o.OrderStatus
	o.OrderStatus = to
	log.Info().
		Str("order_id", o.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("actor", string(actor)).
		Str("by", actorEmail).
		Msg("order: status changed")

	s.inv.Invalidate(ctx, userOrdersKey(o.UserEmail), chefOrdersKey(o.ChefID), cache.Key(keyOrders, "all"), keyStats)
	if s.pub != nil {
		err := s.pub.Publish(context.WithoutCancel(ctx), events.Event{
			Kind:      events.OrderStatusChanged,
			OrderID:   o.ID,
			Status:    string(to),
			UserEmail: o.UserEmail,
		})
		if err != nil {
			log.Warn().Err(err).Str("order_id", o.ID).Msg("order: failed to publish status change")
		}
	}
	return o, nil
}

// Pay abre una sesión de checkout. Solo se ofrece con la orden aceptada y el
// pago pendiente.
func (s *OrderService) Pay(ctx context.Context, caller Caller, orderID string) (model.CheckoutSession, error) {
	orders, err := s.orders.ListOrdersByEmail(ctx, caller.Email)
	if err != nil {
		return model.CheckoutSession{}, err
	}
	o, ok := findOrder(orders, orderID)
	if !ok {
		return model.CheckoutSession{}, ErrOrderNotFound
	}
	if !lifecycle.CanPay(o) {
		return model.CheckoutSession{}, fmt.Errorf("%w: order %s is %s/%s", lifecycle.ErrPaymentNotAllowed, o.ID, o.OrderStatus, o.PaymentStatus)
	}

	sess, err := s.payments.CreateCheckoutSession(ctx, remote.CheckoutRequest{
		OrderID:   o.ID,
		MealName:  o.MealName,
		Price:     o.Price,
		Quantity:  o.Quantity,
		UserEmail: o.UserEmail,
	})
	if err != nil {
		return model.CheckoutSession{}, err
	}
	log.Info().Str("order_id", o.ID).Str("checkout_session", sess.SessionID).Msg("order: checkout session created")
	return sess, nil
}

// VerifyPayment confirma el pago al volver del checkout.
func (s *OrderService) VerifyPayment(ctx context.Context, caller Caller, sessionID, orderID string) (*model.Payment, error) {
	v, err := s.payments.VerifyPayment(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	if !v.Success {
		log.Warn().Str("order_id", orderID).Str("checkout_session", sessionID).Msg("order: payment not verified")
		return nil, ErrPaymentNotVerified
	}
	log.Info().Str("order_id", orderID).Str("user", caller.Email).Msg("order: payment verified")
	s.inv.Invalidate(ctx, keyOrders, keyPayments, keyStats)
	return v.Payment, nil
}

func (s *OrderService) PaymentHistory(ctx context.Context) ([]model.Payment, error) {
	return fetch(ctx, s.cache, cache.Key(keyPayments, "all"), func(ctx context.Context) ([]model.Payment, error) {
		return s.payments.PaymentHistory(ctx)
	})
}

func findOrder(orders []model.Order, id string) (model.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}
