package router

import (
	"Accord_Chat/internal/config"
	"Accord_Chat/internal/handler"
	"Accord_Chat/internal/middleware"
	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/service"
	"Accord_Chat/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func InitRouter(cfg *config.Config, db *gorm.DB, store storage.ObjectStore) *gin.Engine {
	r := gin.Default()

	smtpCfg := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	emailSvc := service.NewEmailService(smtpCfg)
	user := handler.NewUserHandler(service.NewUserService(db, emailSvc))
	email := handler.NewEmailHandler(emailSvc)
	server := handler.NewServerHandler(service.NewServerService(db, store, emailSvc))
	message := handler.NewMessageHandler(service.NewMessageService(db))
	reaction := handler.NewReactionHandler(service.NewReactionService(db))

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/logout", user.Logout)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/change-password", user.ChangePassword)
	}

	// 服务器相关接口
	serverGroup := r.Group("/api/server")
	serverGroup.Use(middleware.AuthMiddleware())
	{
		serverGroup.POST("/create", server.Create)
		serverGroup.GET("/list", server.List)
	}

	// 消息相关接口
	messageGroup := r.Group("/api/message")
	messageGroup.Use(middleware.AuthMiddleware())
	{
		messageGroup.POST("/create", message.Post)
		messageGroup.DELETE("/:id", message.Delete)
		messageGroup.GET("/list/:id", message.ListByServer)
	}

	// 消息表态相关接口
	reactionGroup := r.Group("/api/reaction")
	reactionGroup.Use(middleware.AuthMiddleware())
	{
		reactionGroup.POST("/:id", reaction.React)
		reactionGroup.DELETE("/:id", reaction.Unreact)
		reactionGroup.GET("/:id", reaction.IsReacted)
		reactionGroup.GET("/:id/count", reaction.Count)
	}

	return r
}
