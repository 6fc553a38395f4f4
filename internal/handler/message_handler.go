package handler

import (
	"net/http"
	"strconv"
	"time"

	"Accord_Chat/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.MessageService
}

type PostMessageReq struct {
	ServerID uint64 `json:"server_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Post(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req PostMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	msg, err := h.svc.Post(userID, req.ServerID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": msg.ID})
}

// ListByServer 服务器消息流，游标分页
func (h *MessageHandler) ListByServer(c *gin.Context) {
	idStr := c.Param("id")
	serverID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || serverID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid server id"})
		return
	}

	var lastID uint64
	if v := c.Query("last_id"); v != "" {
		if lastID, err = strconv.ParseUint(v, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid last_id"})
			return
		}
	}
	size, _ := strconv.Atoi(c.Query("size"))

	list, nextID, nextTS, err := h.svc.ListByServerCursor(serverID, lastID, size)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"list":              list,
		"next_last_id":      nextID,
		"next_created_at":   nextTS,
		"next_created_at_s": time.Unix(nextTS, 0).Format(time.RFC3339),
	})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	idStr := c.Param("id")
	msgID, _ := strconv.ParseUint(idStr, 10, 64)

	if err := h.svc.Delete(userID, msgID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
