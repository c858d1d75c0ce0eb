package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(router *gin.Engine, h Handler) {
	router.NoRoute(h.HandleNoRoute)

	api := router.Group("/api")
	api.GET("/health", h.HandleHealth)

	authRouter := api.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)
	authRouter.GET("/me", h.HandleAuthMiddleware, h.HandleMe)

	tasksRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("/create", h.HandleCreateTask)
	tasksRouter.PUT("/update/:id", h.HandleUpdateTask)
	tasksRouter.POST("/update/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/delete/:id", h.HandleDeleteTask)
}
