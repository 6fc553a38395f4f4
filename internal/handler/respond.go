package handler

import (
	"Accord_Chat/internal/pkg"

	"github.com/gin-gonic/gin"
)

// fail 统一错误响应：service 层抛什么错误码，这里就回什么状态
func fail(c *gin.Context, err error) {
	re := pkg.From(err)
	c.JSON(re.Status, gin.H{"code": re.Code, "msg": re.Message})
}
