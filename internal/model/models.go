// models.go
package model

import "time"

// Entidades del record store remoto. El "_id" lo asigna el store.

type Order struct {
	ID            string        `json:"_id,omitempty"`
	FoodID        string        `json:"foodId"`
	MealName      string        `json:"mealName"`
	Price         float64       `json:"price"`
	Quantity      int           `json:"quantity"`
	ChefID        string        `json:"chefId"`
	ChefName      string        `json:"chefName"`
	UserEmail     string        `json:"userEmail"`
	UserAddress   string        `json:"userAddress"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderTime     time.Time     `json:"orderTime"`
}

// Total es precio unitario por cantidad.
func (o Order) Total() float64 {
	return o.Price * float64(o.Quantity)
}

type User struct {
	ID          string     `json:"_id,omitempty"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	PhotoURL    string     `json:"photoURL"`
	Address     string     `json:"address"`
	Role        Role       `json:"role"`
	UserStatus  UserStatus `json:"userStatus"`
	ChefID      string     `json:"chefId,omitempty"`
}

type RoleChangeRequest struct {
	ID            string        `json:"_id,omitempty"`
	UserEmail     string        `json:"userEmail"`
	UserName      string        `json:"userName"`
	RequestType   Role          `json:"requestType"`
	RequestStatus RequestStatus `json:"requestStatus"`
	RequestTime   time.Time     `json:"requestTime"`
}

type Review struct {
	ID         string    `json:"_id,omitempty"`
	MealID     string    `json:"mealId"`
	MealName   string    `json:"mealName"`
	UserEmail  string    `json:"userEmail"`
	UserName   string    `json:"userName"`
	UserImage  string    `json:"userImage"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	ReviewDate time.Time `json:"reviewDate"`
}

type Favorite struct {
	ID        string    `json:"_id,omitempty"`
	UserEmail string    `json:"userEmail"`
	MealID    string    `json:"mealId"`
	MealName  string    `json:"mealName"`
	ChefID    string    `json:"chefId"`
	ChefName  string    `json:"chefName"`
	Price     float64   `json:"price"`
	AddedTime time.Time `json:"addedTime"`
}

type Meal struct {
	ID                    string    `json:"_id,omitempty"`
	FoodName              string    `json:"foodName"`
	FoodImage             string    `json:"foodImage"`
	Price                 float64   `json:"price"`
	Ingredients           []string  `json:"ingredients"`
	EstimatedDeliveryTime string    `json:"estimatedDeliveryTime"`
	FoodDescription       string    `json:"foodDescription"`
	ChefID                string    `json:"chefId"`
	ChefName              string    `json:"chefName"`
	ChefsExperience       string    `json:"chefsExperience"`
	UserEmail             string    `json:"userEmail"`
	DeliveryArea          string    `json:"deliveryArea"`
	Rating                float64   `json:"rating"`
	CreatedDate           time.Time `json:"createdDate"`
}

// MealPage es una página de /meals.
type MealPage struct {
	Meals []Meal `json:"meals"`
	Total int    `json:"total"`
}

type Payment struct {
	ID            string    `json:"_id,omitempty"`
	OrderID       string    `json:"orderId"`
	SessionID     string    `json:"sessionId"`
	TransactionID string    `json:"transactionId"`
	UserEmail     string    `json:"userEmail"`
	MealName      string    `json:"mealName"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type PaymentVerification struct {
	Success bool     `json:"success"`
	Payment *Payment `json:"payment,omitempty"`
}

// Respuestas de escritura del store (forma de un driver Mongo).
type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

type UpdateResult struct {
	MatchedCount  int `json:"matchedCount"`
	ModifiedCount int `json:"modifiedCount"`
}

type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}
