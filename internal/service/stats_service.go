package service

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/TusharChow20/project-Chef-Lokal/internal/cache"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

// RevenueMonths es cuántos meses muestra la serie de ingresos.
const RevenueMonths = 6

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type RoleCount struct {
	Role  model.Role `json:"role"`
	Count int        `json:"count"`
}

type PlatformStats struct {
	TotalUsers      int                       `json:"totalUsers"`
	TotalPayments   float64                   `json:"totalPayments"`
	OrdersPending   int                       `json:"ordersPending"`
	OrdersDelivered int                       `json:"ordersDelivered"`
	TotalOrders     int                       `json:"totalOrders"`
	OrdersByStatus  map[model.OrderStatus]int `json:"ordersByStatus"`
	RevenueByMonth  []MonthRevenue            `json:"revenueByMonth"`
	UsersByRole     []RoleCount               `json:"usersByRole"`
}

type StatsService struct {
	users    UserStore
	orders   OrderStore
	payments PaymentStore
	cache    *cache.Cache
}

func NewStatsService(users UserStore, orders OrderStore, payments PaymentStore, c *cache.Cache) *StatsService {
	return &StatsService{users: users, orders: orders, payments: payments, cache: c}
}

// Platform carga usuarios, órdenes y pagos en paralelo y arma el tablero.
func (s *StatsService) Platform(ctx context.Context) (PlatformStats, error) {
	return fetch(ctx, s.cache, keyStats, func(ctx context.Context) (PlatformStats, error) {
		var (
			users    []model.User
			orders   []model.Order
			payments []model.Payment
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			users, err = s.users.ListUsers(gctx)
			return err
		})
		g.Go(func() (err error) {
			orders, err = s.orders.ListAllOrders(gctx)
			return err
		})
		g.Go(func() (err error) {
			payments, err = s.payments.PaymentHistory(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return PlatformStats{}, err
		}
		return ComputeStats(users, orders, payments), nil
	})
}

func ComputeStats(users []model.User, orders []model.Order, payments []model.Payment) PlatformStats {
	st := PlatformStats{
		TotalUsers:     len(users),
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[model.OrderStatus]int),
	}

	for _, o := range orders {
		st.OrdersByStatus[o.OrderStatus]++
	}
	st.OrdersPending = st.OrdersByStatus[model.OrderPending]
	st.OrdersDelivered = st.OrdersByStatus[model.OrderDelivered]

	type bucket struct {
		key   int
		label string
		sum   float64
	}
	months := map[int]*bucket{}
	for _, p := range payments {
		st.TotalPayments += p.Amount
		if p.PaymentDate.IsZero() {
			continue
		}
		d := p.PaymentDate.UTC()
		k := d.Year()*12 + int(d.Month()) - 1
		b, ok := months[k]
		if !ok {
			b = &bucket{key: k, label: d.Format("Jan 2006")}
			months[k] = b
		}
		b.sum += p.Amount
	}
	st.TotalPayments = round2(st.TotalPayments)

	ordered := make([]*bucket, 0, len(months))
	for _, b := range months {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })
	if len(ordered) > RevenueMonths {
		ordered = ordered[len(ordered)-RevenueMonths:]
	}
	st.RevenueByMonth = make([]MonthRevenue, 0, len(ordered))
	for _, b := range ordered {
		st.RevenueByMonth = append(st.RevenueByMonth, MonthRevenue{Month: b.label, Revenue: round2(b.sum)})
	}

	roles := map[model.Role]int{}
	for _, u := range users {
		r := u.Role
		if r == "" {
			r = model.RoleUser
		}
		roles[r]++
	}
	st.UsersByRole = make([]RoleCount, 0, len(roles))
	for r, n := range roles {
		st.UsersByRole = append(st.UsersByRole, RoleCount{Role: r, Count: n})
	}
	sort.Slice(st.UsersByRole, func(i, j int) bool { return st.UsersByRole[i].Role < st.UsersByRole[j].Role })
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
