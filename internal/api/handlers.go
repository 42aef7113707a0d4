package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/katchaapp/katcha/internal/katcha"
	"github.com/katchaapp/katcha/internal/models"
	"github.com/katchaapp/katcha/internal/targets"
)

func (r *Router) respondError(c *gin.Context, err error) {
	var httpErr *katcha.HTTPError
	switch {
	case errors.Is(err, katcha.ErrMissingCredentials), errors.Is(err, katcha.ErrNoRefreshToken):
		r.fail(c, http.StatusServiceUnavailable, "backend session unavailable")
	case errors.Is(err, targets.ErrInvalidPlatform):
		r.fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		r.fail(c, http.StatusNotFound, "not found")
	case errors.As(err, &httpErr):
		r.logger.Warn("backend error", zap.Int("status", httpErr.Status))
		r.fail(c, http.StatusBadGateway, httpErr.Body)
	default:
		r.logger.Error("request failed", zap.Error(err))
		r.fail(c, http.StatusInternalServerError, "internal error")
	}
}

func (r *Router) fail(c *gin.Context, code int, message string) {
	c.JSON(code, NewError(code, message))
}

func (r *Router) listTargets(c *gin.Context) {
	list, err := r.targets.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Target{}
	}
	c.JSON(http.StatusOK, gin.H{"targets": list})
}

type addTargetRequest struct {
	Platform models.Platform `json:"platform" binding:"required"`
	Username string          `json:"username" binding:"required"`
}

func (r *Router) addTarget(c *gin.Context) {
	var req addTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	target, err := r.targets.Add(c.Request.Context(), req.Platform, req.Username)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "target": target})
}

func (r *Router) deleteTarget(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		r.fail(c, http.StatusBadRequest, "invalid target id")
		return
	}
	if err := r.targets.Delete(c.Request.Context(), id); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) listNotifications(c *gin.Context) {
	list, err := r.notifs.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (r *Router) unreadCount(c *gin.Context) {
	count, err := r.notifs.UnreadCount(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (r *Router) markRead(c *gin.Context) {
	if err := r.notifs.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) markAllRead(c *gin.Context) {
	if err := r.notifs.MarkAllRead(c.Request.Context()); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) deleteNotification(c *gin.Context) {
	if err := r.notifs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) clearNotifications(c *gin.Context) {
	if err := r.notifs.Clear(c.Request.Context()); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) getSubscription(c *gin.Context) {
	info, err := r.client.GetSubscription(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (r *Router) status(c *gin.Context) {
	last, err := r.detector.LastChecked(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	unread, err := r.notifs.UnreadCount(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	resp := gin.H{"unread": unread}
	if last.IsZero() {
		resp["last_checked"] = nil
	} else {
		resp["last_checked"] = last.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// triggerPoll runs one poll cycle inline. Overlapping triggers coalesce
// inside the detector.
func (r *Router) triggerPoll(c *gin.Context) {
	if err := r.detector.RunCycle(c.Request.Context()); err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
