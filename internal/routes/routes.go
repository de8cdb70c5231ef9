package routes

import (
	"github.com/gin-gonic/gin"

	"ofertalia/internal/authz"
	"ofertalia/internal/handlers"
	"ofertalia/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	leadHandler *handlers.LeadHandler,
	verifyHandler *handlers.VerifyHandler,
	taskHandler *handlers.TaskHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	// USERS (admin manages accounts)
	users := r.Group("/users", middleware.RequireRoles(authz.RoleAdmin))
	{
		users.POST("/", userHandler.Create)
		users.GET("/", userHandler.List)
		users.GET("/:id", userHandler.GetByID)
	}
	r.GET("/gestors", middleware.RequireRoles(authz.RoleAdmin, authz.RoleCRM, authz.RoleAudit), userHandler.GestorLoads)

	// LEADS
	leads := r.Group("/leads")
	{
		leads.POST("/", leadHandler.Create)
		leads.GET("/", leadHandler.List)
		leads.GET("/:id", leadHandler.GetByID)
		leads.PUT("/:id", leadHandler.Update)
		leads.POST("/:id/status", leadHandler.Transition)
		leads.POST("/:id/assign", leadHandler.Assign)
		leads.POST("/:id/notes", leadHandler.AddNote)
		leads.GET("/:id/activities", leadHandler.Activities)
	}

	// VERIFICATION (CRM gate; role re-checked inside the service)
	verification := r.Group("/verification", middleware.RequireRoles(authz.RoleCRM))
	{
		verification.POST("/:id/approve", verifyHandler.Approve)
		verification.POST("/:id/reject", verifyHandler.Reject)
	}

	// TASKS
	tasks := r.Group("/tasks",
		middleware.RequireRoles(authz.RoleComercial, authz.RoleCRM, authz.RoleAdmin, authz.RoleAudit),
	)
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.POST("/score", taskHandler.Score)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.POST("/:id/status", taskHandler.UpdateStatus)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	return r
}
