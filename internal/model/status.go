// status.go
package model

import "strings"

// OrderStatus es el estado de la orden tal como lo guarda el record store.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleChef  Role = "chef"
	RoleAdmin Role = "admin"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserFraud    UserStatus = "fraud"
	UserRejected UserStatus = "rejected"
)

// The record store has been seen holding "Pending" next to "pending",
// so every status decodes case-insensitively.
func normalize(b []byte) string {
	return strings.ToLower(strings.TrimSpace(string(b)))
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	*s = OrderStatus(normalize(b))
	return nil
}

func (s *PaymentStatus) UnmarshalText(b []byte) error {
	*s = PaymentStatus(normalize(b))
	return nil
}

func (s *RequestStatus) UnmarshalText(b []byte) error {
	*s = RequestStatus(normalize(b))
	return nil
}

func (r *Role) UnmarshalText(b []byte) error {
	*r = Role(normalize(b))
	return nil
}

func (s *UserStatus) UnmarshalText(b []byte) error {
	*s = UserStatus(normalize(b))
	return nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderPreparing, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleChef, RoleAdmin:
		return true
	}
	return false
}

// Elevated reports whether the role can be asked for through a role-change request.
func (r Role) Elevated() bool {
	return r == RoleChef || r == RoleAdmin
}

func (s OrderStatus) String() string   { return string(s) }
func (s PaymentStatus) String() string { return string(s) }
func (r Role) String() string          { return string(r) }
