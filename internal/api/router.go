// Package api exposes the tracker over HTTP: target management, the
// notification feed, and poll status.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/katchaapp/katcha/internal/detector"
	"github.com/katchaapp/katcha/internal/katcha"
	"github.com/katchaapp/katcha/internal/store"
	"github.com/katchaapp/katcha/internal/targets"
	"github.com/katchaapp/katcha/pkg/logging"
)

// Router sets up API routes
type Router struct {
	client   *katcha.Client
	targets  *targets.Repository
	notifs   store.NotificationStore
	detector *detector.Detector
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(client *katcha.Client, repo *targets.Repository, notifs store.NotificationStore, det *detector.Detector) *Router {
	return &Router{
		client:   client,
		targets:  repo,
		notifs:   notifs,
		detector: det,
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	api := engine.Group("/api")
	{
		api.GET("/targets", r.listTargets)
		api.POST("/targets", r.addTarget)
		api.DELETE("/targets/:id", r.deleteTarget)

		api.GET("/notifications", r.listNotifications)
		api.GET("/notifications/unread-count", r.unreadCount)
		api.POST("/notifications/read-all", r.markAllRead)
		api.POST("/notifications/:id/read", r.markRead)
		api.DELETE("/notifications/:id", r.deleteNotification)
		api.DELETE("/notifications", r.clearNotifications)

		api.GET("/subscription", r.getSubscription)

		api.GET("/status", r.status)
		api.POST("/poll", r.triggerPoll)
	}
}

func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "katcha-api",
	})
}
