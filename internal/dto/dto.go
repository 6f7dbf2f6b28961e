// dto.go
package dto

import "github.com/TusharChow20/project-Chef-Lokal/internal/model"

// Requests del gateway. La validación de forma va en los tags de binding; las
// reglas de negocio (rating, longitud de reseña, fraude) las aplica el service.

type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	Address  string `json:"address" form:"address"`
	PhotoURL string `json:"photoURL" form:"photoURL"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PlaceOrderRequest struct {
	MealID   string `json:"mealId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Address  string `json:"address" binding:"required,min=15"`
}

type OrderActionRequest struct {
	Action string `json:"action" binding:"required,oneof=accept prepare deliver cancel"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	OrderID   string `json:"orderId" binding:"required"`
}

type RoleRequest struct {
	RequestType model.Role `json:"requestType" binding:"required,oneof=chef admin"`
}

type ReviewRequest struct {
	Rating     int    `json:"rating" binding:"required"`
	ReviewText string `json:"reviewText" binding:"required"`
}

type FavoriteRequest struct {
	MealID string `json:"mealId" binding:"required"`
}

// MealRequest llega como multipart (con la imagen en "image") o como JSON con foodImage.
type MealRequest struct {
	FoodName              string   `json:"foodName" form:"foodName" binding:"required"`
	Price                 float64  `json:"price" form:"price" binding:"required"`
	Ingredients           []string `json:"ingredients" form:"ingredients"`
	EstimatedDeliveryTime string   `json:"estimatedDeliveryTime" form:"estimatedDeliveryTime"`
	FoodDescription       string   `json:"foodDescription" form:"foodDescription"`
	ChefsExperience       string   `json:"chefsExperience" form:"chefsExperience"`
	DeliveryArea          string   `json:"deliveryArea" form:"deliveryArea"`
	FoodImage             string   `json:"foodImage" form:"foodImage"`
}

type ProfileRequest struct {
	DisplayName *string `json:"displayName" form:"displayName"`
	Address     *string `json:"address" form:"address"`
}

// MealQuery son los filtros del listado público.
type MealQuery struct {
	Page      int      `form:"page" binding:"min=0"`
	Search    string   `form:"search"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	MinRating *float64 `form:"minRating"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=asc desc"`
}
