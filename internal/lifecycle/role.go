package lifecycle

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

var (
	ErrAccountRestricted = errors.New("Account Restricted")
	ErrRequestPending    = errors.New("a request of this type is already pending")
	ErrInvalidRoleType   = errors.New("role type must be chef or admin")
	ErrAlreadyHasRole    = errors.New("user already has this role")
	ErrCannotFlagAdmin   = errors.New("an admin cannot be marked as fraud")
	ErrAlreadyFraud      = errors.New("user is already marked as fraud")
	ErrNotPending        = errors.New("request is not pending")

	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidReviewText = errors.New("review must be between 10 and 500 characters")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrNoIngredients     = errors.New("at least one ingredient is required")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinReviewLength  = 10
	MaxReviewLength  = 500
	MinOrderQuantity = 1
)

// CanWrite bloquea a usuarios fraud para crear comidas, reseñas o solicitudes.
func CanWrite(u model.User) error {
	if u.UserStatus == model.UserFraud {
		return ErrAccountRestricted
	}
	return nil
}

// CanRequestRole checks a role-change request before it is sent. pending holds
// the user's outstanding requests.
func CanRequestRole(u model.User, pending []model.RoleChangeRequest, roleType model.Role) error {
	if !roleType.Elevated() {
		return ErrInvalidRoleType
	}
	if err := CanWrite(u); err != nil {
		return err
	}
	if u.Role == roleType {
		return ErrAlreadyHasRole
	}
	if HasPendingRequest(pending, roleType) {
		return ErrRequestPending
	}
	return nil
}

// HasPendingRequest reports whether a pending request of roleType exists.
// A request with no status yet counts as pending, same as in CanDecide.
func HasPendingRequest(reqs []model.RoleChangeRequest, roleType model.Role) bool {
	for _, r := range reqs {
		if r.RequestType == roleType && isPending(r.RequestStatus) {
			return true
		}
	}
	return false
}

// CanDecide checks that an admin may approve or reject the request.
func CanDecide(r model.RoleChangeRequest) error {
	if !isPending(r.RequestStatus) {
		return fmt.Errorf("%w: %s", ErrNotPending, r.RequestStatus)
	}
	if !r.RequestType.Elevated() {
		return ErrInvalidRoleType
	}
	return nil
}

func isPending(s model.RequestStatus) bool {
	return s == "" || s == model.RequestPending
}

// CanMarkFraud mirrors the management table: admins and already-flagged
// users get no "Make Fraud" button.
func CanMarkFraud(target model.User) error {
	if target.Role == model.RoleAdmin {
		return ErrCannotFlagAdmin
	}
	if target.UserStatus == model.UserFraud {
		return ErrAlreadyFraud
	}
	return nil
}

func ValidateReview(rating int, text string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	n := utf8.RuneCountInString(text)
	if n < MinReviewLength || n > MaxReviewLength {
		return ErrInvalidReviewText
	}
	return nil
}

func ValidateMeal(m model.Meal) error {
	if m.Price <= 0 {
		return ErrInvalidPrice
	}
	if len(m.Ingredients) == 0 {
		return ErrNoIngredients
	}
	return nil
}
