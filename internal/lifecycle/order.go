package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

// Actor es quien dispara una transición.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorChef     Actor = "chef"
	ActorAdmin    Actor = "admin"
	ActorPayment  Actor = "payment"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrTerminalState     = errors.New("order is in a terminal state")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrPaymentRequired   = errors.New("order must be paid before this transition")
	ErrPaymentNotAllowed = errors.New("payment is not allowed for this order")
)

// Transition is one row of the order state machine.
type Transition struct {
	From         model.OrderStatus `json:"from"`
	To           model.OrderStatus `json:"to"`
	Actor        Actor             `json:"actor"`
	RequiresPaid bool              `json:"requiresPaid,omitempty"`
}

var orderTransitions = []Transition{
	{From: model.OrderPending, To: model.OrderAccepted, Actor: ActorChef},
	{From: model.OrderPending, To: model.OrderCancelled, Actor: ActorChef},
	{From: model.OrderAccepted, To: model.OrderPreparing, Actor: ActorChef},
	{From: model.OrderAccepted, To: model.OrderDelivered, Actor: ActorChef, RequiresPaid: true},
	{From: model.OrderPreparing, To: model.OrderDelivered, Actor: ActorChef},
	// side branch: only an admin cancels after acceptance
	{From: model.OrderAccepted, To: model.OrderCancelled, Actor: ActorAdmin},
}

var terminalStates = map[model.OrderStatus]bool{
	model.OrderDelivered: true,
	model.OrderCancelled: true,
}

type transitionKey struct {
	From  model.OrderStatus
	To    model.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]Transition {
	m := make(map[transitionKey]Transition, len(orderTransitions))
	for _, t := range orderTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = t
	}
	return m
}()

// Transitions returns the full order state machine.
func Transitions() []Transition {
	out := make([]Transition, len(orderTransitions))
	copy(out, orderTransitions)
	return out
}

// IsTerminal reports whether no further transition is allowed from s.
func IsTerminal(s model.OrderStatus) bool {
	return terminalStates[s]
}

// NextStates lists the states the actor may move an order in status from to.
func NextStates(from model.OrderStatus, actor Actor) []model.OrderStatus {
	var out []model.OrderStatus
	for _, t := range orderTransitions {
		if t.From == from && t.Actor == actor {
			out = append(out, t.To)
		}
	}
	return out
}

// CheckOrderTransition valida que el actor pueda llevar la orden al estado to.
func CheckOrderTransition(o model.Order, to model.OrderStatus, actor Actor) error {
	if !o.OrderStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, o.OrderStatus)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if IsTerminal(o.OrderStatus) {
		return fmt.Errorf("%w: %s", ErrTerminalState, o.OrderStatus)
	}
	t, ok := transitionMap[transitionKey{o.OrderStatus, to, actor}]
	if !ok {
		return fmt.Errorf("%w: %s -> %s is not allowed for %s (valid: %s)",
			ErrInvalidTransition, o.OrderStatus, to, actor, describe(NextStates(o.OrderStatus, actor)))
	}
	if t.RequiresPaid && o.PaymentStatus != model.PaymentPaid {
		return fmt.Errorf("%w: payment is %s", ErrPaymentRequired, o.PaymentStatus)
	}
	return nil
}

// CheckPaymentTransition valida un cambio de estado de pago. Un pago sólo
// se confirma cuando la orden ya fue aceptada y no está cancelada.
func CheckPaymentTransition(o model.Order, to model.PaymentStatus) error {
	if !to.Valid() || to == model.PaymentPending {
		return fmt.Errorf("%w: payment %q", ErrInvalidTransition, to)
	}
	if o.PaymentStatus != model.PaymentPending {
		return fmt.Errorf("%w: payment already %s", ErrPaymentNotAllowed, o.PaymentStatus)
	}
	switch o.OrderStatus {
	case model.OrderAccepted, model.OrderPreparing, model.OrderDelivered:
		return nil
	}
	return fmt.Errorf("%w: order is %s", ErrPaymentNotAllowed, o.OrderStatus)
}

func describe(states []model.OrderStatus) string {
	if len(states) == 0 {
		return "none"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Step maps an order to its 1-based position in the five-step progress indicator.
func Step(o model.Order) int {
	switch {
	case o.OrderStatus == model.OrderDelivered:
		return 5
	case o.OrderStatus == model.OrderPreparing:
		return 4
	case o.OrderStatus == model.OrderAccepted && o.PaymentStatus == model.PaymentPaid:
		return 3
	case o.OrderStatus == model.OrderAccepted:
		return 2
	default:
		return 1
	}
}

// StepLabels are the captions of the progress indicator, in order.
var StepLabels = []string{"Order Placed", "Accepted", "Payment Completed", "Preparing", "Delivered"}

func CanAccept(o model.Order) bool {
	return CheckOrderTransition(o, model.OrderAccepted, ActorChef) == nil
}

func CanPrepare(o model.Order) bool {
	return CheckOrderTransition(o, model.OrderPreparing, ActorChef) == nil
}

func CanDeliver(o model.Order) bool {
	return CheckOrderTransition(o, model.OrderDelivered, ActorChef) == nil
}

func CanCancel(o model.Order) bool {
	return CheckOrderTransition(o, model.OrderCancelled, ActorChef) == nil
}

// CanPay gates the customer's "Pay Now" action.
func CanPay(o model.Order) bool {
	return o.OrderStatus == model.OrderAccepted && o.PaymentStatus == model.PaymentPending
}
