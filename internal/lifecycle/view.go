package lifecycle

import "github.com/TusharChow20/project-Chef-Lokal/internal/model"

// Action es un botón que la UI puede ofrecer sobre una orden.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionPrepare Action = "prepare"
	ActionDeliver Action = "deliver"
	ActionCancel  Action = "cancel"
	ActionPay     Action = "pay"
)

// TargetStatus is the order status a chef action moves to.
func (a Action) TargetStatus() (model.OrderStatus, bool) {
	switch a {
	case ActionAccept:
		return model.OrderAccepted, true
	case ActionPrepare:
		return model.OrderPreparing, true
	case ActionDeliver:
		return model.OrderDelivered, true
	case ActionCancel:
		return model.OrderCancelled, true
	}
	return "", false
}

// OrderView is what a dashboard renders for one order.
type OrderView struct {
	Order   model.Order `json:"order"`
	Step    int         `json:"step"`
	Steps   []string    `json:"steps"`
	Total   float64     `json:"total"`
	Actions []Action    `json:"actions"`
}

// ChefView exposes the chef-facing actions of an order.
func ChefView(o model.Order) OrderView {
	actions := []Action{}
	if CanAccept(o) {
		actions = append(actions, ActionAccept)
	}
	if CanPrepare(o) {
		actions = append(actions, ActionPrepare)
	}
	if CanDeliver(o) {
		actions = append(actions, ActionDeliver)
	}
	if CanCancel(o) {
		actions = append(actions, ActionCancel)
	}
	return newView(o, actions)
}

// CustomerView exposes the customer-facing actions of an order.
func CustomerView(o model.Order) OrderView {
	actions := []Action{}
	if CanPay(o) {
		actions = append(actions, ActionPay)
	}
	return newView(o, actions)
}

func newView(o model.Order, actions []Action) OrderView {
	return OrderView{
		Order:   o,
		Step:    Step(o),
		Steps:   StepLabels,
		Total:   o.Total(),
		Actions: actions,
	}
}

// OrderSummary agrupa las órdenes por estado para el encabezado del dashboard.
type OrderSummary struct {
	Count      int                       `json:"count"`
	TotalSpent float64                   `json:"totalSpent"`
	ByStatus   map[model.OrderStatus]int `json:"byStatus"`
}

func Summarize(orders []model.Order) OrderSummary {
	s := OrderSummary{ByStatus: map[model.OrderStatus]int{}}
	for _, o := range orders {
		s.Count++
		s.TotalSpent += o.Total()
		s.ByStatus[o.OrderStatus]++
	}
	return s
}
