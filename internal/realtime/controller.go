package realtime

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"viabus/internal/shared/apperr"
	"viabus/internal/shared/utils/response"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// StreamSeatUpdates handles GET /routes/:id/seats/stream
//
// Server-sent events: one "seat-update" event per lifecycle change on the
// route. The stream ends when the client disconnects or the hub evicts a
// subscriber that fell behind; the client then re-fetches availability and
// reconnects.
func (rc *Controller) StreamSeatUpdates(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apperr.Validation("invalid route id"))
		return
	}

	sub := rc.service.Hub().Subscribe(routeID)
	defer rc.service.Hub().Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent("seat-update", event)
			return true
		case <-clientGone:
			return false
		}
	})
}

// GetStats handles GET /realtime/stats
func (rc *Controller) GetStats(c *gin.Context) {
	response.RespondJSON(c, "success", http.StatusOK, "Subscriber stats retrieved successfully", gin.H{
		"routes": rc.service.Hub().Stats(),
	}, nil)
}
