package handler

import (
	"github.com/gin-gonic/gin"
	eventapp "github.com/retailcore/backend/internal/application/event"
)

const defaultActivityLimit = 50

// ActivityHandler exposes the recent domain events kept in memory
type ActivityHandler struct {
	BaseHandler
	activity *eventapp.ActivityLog
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activity *eventapp.ActivityLog) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

type activityQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// Recent lists events newest first
func (h *ActivityHandler) Recent(c *gin.Context) {
	var q activityQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultActivityLimit
	}
	h.Success(c, h.activity.Recent(q.Limit))
}
