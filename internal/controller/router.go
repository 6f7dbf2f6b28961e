package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/middleware"
	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
)

type Handlers struct {
	Auth      *AuthController
	Orders    *OrderController
	Meals     *MealController
	Reviews   *ReviewController
	Favorites *FavoriteController
	Users     *UserController
	Roles     *RoleController
	Stats     *StatsController
}

func NewRouter(h Handlers, sessions middleware.SessionResolver) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Rutas públicas
	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)
	r.GET("/meals", h.Meals.List)
	r.GET("/meals/:id", h.Meals.Get)
	r.GET("/meals/:id/reviews", h.Reviews.ListForMeal)

	// Rutas protegidas (requieren sesión)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(sessions))

	auth.POST("/auth/logout", h.Auth.Logout)
	auth.GET("/me", h.Users.Profile)
	auth.GET("/me/role", h.Users.Role)
	auth.PATCH("/me", h.Users.UpdateProfile)

	auth.POST("/orders", h.Orders.Place)
	auth.GET("/orders/mine", h.Orders.GetMyOrders)
	auth.GET("/orders/summary", h.Orders.GetSummary)
	auth.POST("/orders/:orderId/pay", h.Orders.Pay)
	auth.POST("/payments/verify", h.Orders.VerifyPayment)

	auth.POST("/meals/:id/reviews", h.Reviews.Create)
	auth.GET("/reviews/mine", h.Reviews.ListMine)
	auth.PATCH("/reviews/:id", h.Reviews.Update)
	auth.DELETE("/reviews/:id", h.Reviews.Delete)

	auth.GET("/favorites", h.Favorites.List)
	auth.POST("/favorites", h.Favorites.Add)
	auth.DELETE("/favorites/:id", h.Favorites.Remove)

	auth.POST("/role-requests", h.Roles.Request)
	auth.GET("/role-requests/mine", h.Roles.ListMine)

	// Rutas chef
	chef := auth.Group("/chef")
	chef.Use(middleware.RoleRequired(model.RoleChef))
	chef.GET("/orders", h.Orders.GetChefOrders)
	chef.PATCH("/orders/:orderId", h.Orders.Advance)
	chef.GET("/meals", h.Meals.GetMine)
	chef.POST("/meals", h.Meals.Create)
	chef.PUT("/meals/:id", h.Meals.Update)
	chef.DELETE("/meals/:id", h.Meals.Delete)

	// Rutas admin
	admin := auth.Group("/admin")
	admin.Use(middleware.RoleRequired(model.RoleAdmin))
	admin.GET("/orders", h.Orders.GetAllOrders)
	admin.PATCH("/orders/:orderId/cancel", h.Orders.Cancel)
	admin.GET("/payments", h.Orders.GetPayments)
	admin.GET("/users", h.Users.ListAll)
	admin.PATCH("/users/:email/fraud", h.Users.MarkFraud)
	admin.GET("/reviews", h.Reviews.ListAll)
	admin.GET("/role-requests", h.Roles.ListAll)
	admin.POST("/role-requests/:id/approve", h.Roles.Approve)
	admin.POST("/role-requests/:id/reject", h.Roles.Reject)
	admin.GET("/sagas", h.Roles.ListSagas)
	admin.POST("/sagas/recover", h.Roles.Recover)
	admin.GET("/stats", h.Stats.Platform)
	// los admins también borran comidas ajenas
	admin.DELETE("/meals/:id", h.Meals.Delete)

	return r
}
