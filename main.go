package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"laundry/internal/config"
	"laundry/internal/database"
	"laundry/internal/handlers"
	"laundry/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureRiderIndexes(db); err != nil {
		log.Printf("rider index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureServiceIndexes(db); err != nil {
		log.Printf("service index warning: %v", err)
	}
	if err := database.EnsureNotificationIndexes(db); err != nil {
		log.Printf("notification index warning: %v", err)
	}

	secret := config.AppEnv.JWTSecret
	auth := middleware.Auth(secret)

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Welcome to the Laundry API"})
	})

	r.POST("/api/auth/register", handlers.Register(db, secret, config.AppEnv.AccessTokenTTL))
	r.POST("/api/auth/login", handlers.Login(db, secret, config.AppEnv.AccessTokenTTL))
	r.GET("/api/auth/me", auth, handlers.GetMe(db))
	r.GET("/api/auth/logout", handlers.Logout())

	users := r.Group("/api/users")
	users.Use(auth)
	{
		users.PUT("/profile", handlers.UpdateProfile(db))
		users.PUT("/profile/image", handlers.UploadProfileImage(db))
		users.GET("/:id", handlers.GetUserByID(db))
	}

	addresses := r.Group("/api/addresses")
	addresses.Use(auth)
	{
		addresses.POST("", handlers.CreateAddress(db))
		addresses.GET("", handlers.GetAddresses(db))
		addresses.GET("/:id", handlers.GetAddressByID(db))
		addresses.PUT("/:id", handlers.UpdateAddress(db))
		addresses.DELETE("/:id", handlers.DeleteAddress(db))
	}

	// Order handlers tolerate a missing caller and only then skip the
	// ownership check; with the auth middleware mounted here the bypass is
	// unreachable in production wiring.
	orders := r.Group("/api/orders")
	orders.Use(auth)
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("", handlers.GetUserOrders(db))
		orders.GET("/:id", handlers.GetOrderByID(db))
		orders.PUT("/:id/status", handlers.UpdateOrderStatus(db))
		orders.DELETE("/:id", handlers.CancelOrder(db))
		orders.POST("/:id/rating", handlers.RateOrder(db))
	}

	r.GET("/api/services", handlers.GetServices(db))
	r.GET("/api/services/:id", handlers.GetService(db))
	r.POST("/api/services", auth, middleware.RequireRoles("admin"), handlers.CreateService(db))
	r.PUT("/api/services/:id", auth, middleware.RequireRoles("admin"), handlers.UpdateService(db))
	r.DELETE("/api/services/:id", auth, middleware.RequireRoles("admin"), handlers.DeleteService(db))

	riders := r.Group("/api/riders")
	riders.Use(auth)
	{
		riders.GET("", middleware.RequireRoles("admin"), handlers.GetRiders(db))
		riders.POST("", middleware.RequireRoles("admin"), handlers.CreateRider(db))
		riders.GET("/:id", middleware.RequireRoles("admin", "rider"), handlers.GetRider(db))
		riders.PUT("/:id/status", middleware.RequireRoles("admin", "rider"), handlers.UpdateRiderStatus(db))
		riders.PUT("/:id/location", middleware.RequireRoles("rider"), handlers.UpdateRiderLocation(db))
		riders.GET("/:id/orders", middleware.RequireRoles("admin", "rider"), handlers.GetRiderOrders(db))
	}

	notifications := r.Group("/api/notifications")
	notifications.Use(auth)
	{
		notifications.GET("", handlers.GetNotifications(db))
		notifications.PUT("/:id/read", handlers.MarkNotificationRead(db))
	}

	admin := r.Group("/api/admin")
	admin.Use(auth, middleware.RequireRoles("admin"))
	{
		admin.GET("/dashboard", handlers.Dashboard(db))
		admin.GET("/users", handlers.AdminGetUsers(db))
		admin.GET("/orders", handlers.AdminGetOrders(db))
		admin.PUT("/orders/:id/status", handlers.AdminUpdateOrderStatus(db))
		admin.PUT("/orders/:id/assign", handlers.AssignRider(db))
		admin.GET("/orders/:id/invoice", handlers.GenerateInvoice(db))
		admin.POST("/notifications", handlers.SendNotification(db))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
