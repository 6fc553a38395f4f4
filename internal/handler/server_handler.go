package handler

import (
	"net/http"

	"Accord_Chat/internal/service"

	"github.com/gin-gonic/gin"
)

type ServerHandler struct {
	svc *service.ServerService
}

type ServerCreateReq struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	ProfileImage *string  `json:"profile_image"`
	Emails       []string `json:"emails"`
}

func NewServerHandler(svc *service.ServerService) *ServerHandler {
	return &ServerHandler{svc: svc}
}

// Create 建服务器并邀请成员，创建者自动并入名单
func (h *ServerHandler) Create(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	var req ServerCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	err := h.svc.AddServerForCreator(c.Request.Context(), userID, service.AddServerReq{
		Name:         req.Name,
		Description:  req.Description,
		ProfileImage: req.ProfileImage,
		InviteEmails: req.Emails,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// List 当前用户所在的服务器列表，头像已编码内联
func (h *ServerHandler) List(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint64)

	list, err := h.svc.GetServerList(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list})
}
