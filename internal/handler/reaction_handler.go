package handler

import (
	"net/http"
	"strconv"

	"Accord_Chat/internal/middleware"
	"Accord_Chat/internal/service"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	svc *service.ReactionService
}

func NewReactionHandler(svc *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{svc: svc}
}

func (h *ReactionHandler) React(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	midStr := c.Param("id")
	mid, _ := strconv.ParseUint(midStr, 10, 64)
	changed, err := h.svc.React(c.Request.Context(), uid.(uint64), mid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *ReactionHandler) Unreact(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	midStr := c.Param("id")
	mid, _ := strconv.ParseUint(midStr, 10, 64)
	changed, err := h.svc.Unreact(c.Request.Context(), uid.(uint64), mid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *ReactionHandler) IsReacted(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	midStr := c.Param("id")
	mid, _ := strconv.ParseUint(midStr, 10, 64)
	reacted, err := h.svc.IsReacted(c.Request.Context(), uid.(uint64), mid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reacted": reacted})
}

func (h *ReactionHandler) Count(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	midStr := c.Param("id")
	mid, _ := strconv.ParseUint(midStr, 10, 64)
	cnt, err := h.svc.GetCount(c.Request.Context(), uid.(uint64), mid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": cnt})
}
