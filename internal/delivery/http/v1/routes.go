package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api. Task mutations sit behind the
// admin gate, which runs before the id is resolved or the body is bound.
func RegisterRoutes(router gin.IRouter, h Handler) {
	api := router.Group("/api")
	api.GET("/health", h.HandleHealth)
	api.POST("/register", h.HandleRegister)
	api.POST("/login", h.HandleLogin)

	authed := api.Group("", h.HandleAuthMiddleware)
	authed.POST("/logout", h.HandleLogout)
	authed.GET("/me", h.HandleMe)

	authed.GET("/tasks", h.HandleListTasks)
	authed.GET("/tasks/:id", h.HandleGetTask)

	admin := authed.Group("", h.HandleRequireAdmin)
	admin.POST("/tasks", h.HandleCreateTask)
	admin.PUT("/tasks/:id", h.HandleUpdateTask)
	admin.PATCH("/tasks/:id", h.HandleUpdateTask)
	admin.DELETE("/tasks/:id", h.HandleDeleteTask)

	authed.GET("/lists", h.HandleListLists)
	authed.POST("/lists", h.HandleCreateList)
	authed.GET("/lists/:id", h.HandleGetList)
	authed.PUT("/lists/:id", h.HandleUpdateList)
	authed.PATCH("/lists/:id", h.HandleUpdateList)
	authed.DELETE("/lists/:id", h.HandleDeleteList)
}
