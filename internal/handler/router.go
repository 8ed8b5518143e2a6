package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers and per-route middleware mounted by Register.
type Routes struct {
	APIPrefix     string
	Registration  *RegistrationHandler
	Auth          *AuthHandler
	Admin         *AdminHandler
	System        *SystemHandler
	Session       gin.HandlerFunc
	SubmitLimit   gin.HandlerFunc
	Meta          gin.HandlerFunc
	EnableMetrics bool
}

func passthrough(c *gin.Context) { c.Next() }

// Register mounts every route on r.
func Register(r *gin.Engine, routes Routes) {
	if routes.Session == nil {
		panic("handler: admin routes require a session middleware")
	}
	if routes.SubmitLimit == nil {
		routes.SubmitLimit = passthrough
	}
	if routes.Meta == nil {
		routes.Meta = passthrough
	}

	r.GET("/health", routes.System.Health)
	r.GET("/ready", routes.System.Ready)
	if routes.EnableMetrics {
		r.GET("/metrics", routes.System.Prometheus)
	}

	api := r.Group(routes.APIPrefix, routes.Meta)
	api.GET("/event", routes.Registration.Event)
	api.GET("/inscriptions/check", routes.Registration.CheckCode)
	api.POST("/inscriptions", routes.SubmitLimit, routes.Registration.Submit)

	api.POST("/admin/login", routes.Auth.Login)
	api.POST("/admin/logout", routes.Auth.Logout)

	admin := api.Group("/admin", routes.Session)
	admin.GET("/session", routes.Auth.Session)
	admin.GET("/inscriptions", routes.Admin.List)
	admin.GET("/inscriptions/export", routes.Admin.Export)
	admin.GET("/stats", routes.Admin.Stats)
	admin.PATCH("/inscriptions/:id/status", routes.Admin.UpdateStatus)
	admin.DELETE("/inscriptions/:id", routes.Admin.Delete)
	admin.GET("/configuration/notification-email", routes.Admin.NotificationEmail)
	admin.PUT("/configuration/notification-email", routes.Admin.UpdateNotificationEmail)
	admin.POST("/notifications/test", routes.Admin.SendTestNotification)
}
