package service

import (
	"errors"
	"log"

	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

var codeSubjects = map[string]string{
	"register": "注册验证",
	"reset":    "重置密码",
}

// SendCode 发送验证码：先落 redis 再发信，发信失败回收验证码
func (s *EmailService) SendCode(scope, email string) error {
	subject, ok := codeSubjects[scope]
	if !ok {
		return pkg.ErrInvalidRequest
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return pkg.ErrInternalServer
	}
	if err = s.rds.SaveCode(scope, email, code); err != nil {
		return pkg.ErrInternalServer
	}

	html := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	if err = pkg.SendEmail(s.emailCfg, email, subject+"验证码", html); err != nil {
		_ = s.rds.DeleteCode(scope, email)
		log.Printf("email service: send %s code to %s: %v", scope, email, err)
		return pkg.ErrMailSendFail
	}
	return nil
}

// VerifyCode 校验验证码并一次性删除
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetCode(scope, email)
	if err != nil {
		if errors.Is(err, redis.ErrEmailCodeNotFound) {
			return false, pkg.ErrVerifyCodeNotFound
		}
		return false, pkg.ErrInternalServer
	}
	if val != code {
		return false, nil
	}
	if err = s.rds.DeleteCode(scope, email); err != nil {
		return false, pkg.ErrInternalServer
	}
	return true, nil
}

// SendInviteNotices 邀请通知，尽力而为
func (s *EmailService) SendInviteNotices(serverName string, emails []string) {
	html := pkg.InviteHTML(serverName)
	for _, to := range emails {
		if err := pkg.SendEmail(s.emailCfg, to, "服务器邀请", html); err != nil {
			log.Printf("email service: invite notice to %s: %v", to, err)
		}
	}
}
