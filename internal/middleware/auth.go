package middleware

import (
	"strings"

	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

func abort(c *gin.Context, re *pkg.RestError) {
	c.AbortWithStatusJSON(re.Status, gin.H{"code": re.Code, "msg": re.Message})
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, pkg.ErrAuthHeaderInvalid)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, pkg.ErrAuthHeaderInvalid)
			return
		}

		tokenStr := parts[1]
		claims, err := pkg.ParseAccess(tokenStr)
		if err != nil {
			abort(c, pkg.From(err))
			return
		}

		// redis 校验是否是当前有效会话的 token
		userRep := &redis.UserRepository{}
		originToken, err := userRep.GetUserToken(claims.UserID)
		if err != nil || originToken != tokenStr {
			// 已退出或在别处登录
			abort(c, pkg.ErrLoginFailed)
			return
		}

		// 校验通过后滑动续期
		if err = userRep.ExtendUserToken(claims.UserID); err != nil {
			abort(c, pkg.ErrInternalServer)
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
