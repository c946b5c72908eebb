package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/utils"
)

type HubController struct {
	Hub *hub.Hub
}

func NewHubController(h *hub.Hub) *HubController {
	return &HubController{Hub: h}
}

// Serve -> GET /ws?token=, staff live feed of booking and table events
func (hc *HubController) Serve(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	if err := hc.Hub.Serve(c.Writer, c.Request, actor.UserID); err != nil {
		utils.ErrorLogger.Printf("WebSocket upgrade failed: %v", err)
	}
}
