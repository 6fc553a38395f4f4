package service

import (
	"errors"
	"log"

	"Accord_Chat/internal/model"
	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/mysql"
	"Accord_Chat/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repo     *mysql.UserRepository
	rUser    *redis.UserRepository
	emailSvc *EmailService
}

func NewUserService(db *gorm.DB, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: db},
		rUser:    &redis.UserRepository{},
		emailSvc: emailSvc,
	}
}

func (s *UserService) Register(username, password, email, code string) error {
	ok, err := s.emailSvc.VerifyCode("register", email, code)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.ErrVerifyCodeNotFound
	}

	if _, err = s.repo.FindByEmail(email); err == nil {
		return pkg.ErrEmailDuplication
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.ErrInternalServer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return pkg.ErrInternalServer
	}

	user := &model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err = s.repo.Create(user); err != nil {
		log.Printf("user service: register %s: %v", email, err)
		return pkg.ErrInternalServer
	}
	return nil
}

func (s *UserService) Login(username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, pkg.ErrLoginFailed
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, pkg.ErrLoginFailed
	}

	token, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, pkg.ErrInternalServer
	}
	// access token 写 redis，实现单点登录
	if err = s.rUser.AddUserToken(user.ID, token.AccessToken); err != nil {
		return nil, pkg.ErrInternalServer
	}
	return token, nil
}

func (s *UserService) Logout(usrID uint64) error {
	if err := s.rUser.DeleteUserToken(usrID); err != nil {
		return pkg.ErrInternalServer
	}
	return nil
}

func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	return pkg.Refresh(refreshToken)
}

// ResetPassword 忘记密码：验证码通过后重置
func (s *UserService) ResetPassword(email, code, newPassword string) error {
	ok, err := s.emailSvc.VerifyCode("reset", email, code)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.ErrVerifyCodeNotFound
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.ErrEmailNotFound
		}
		return pkg.ErrInternalServer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return pkg.ErrInternalServer
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return pkg.ErrInternalServer
	}
	return nil
}

// ChangePassword 登录态修改密码，成功后踢掉当前会话
func (s *UserService) ChangePassword(usrId uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(usrId)
	if err != nil {
		return pkg.ErrInternalServer
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.ErrPasswordInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return pkg.ErrInternalServer
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return pkg.ErrInternalServer
	}
	return s.Logout(usrId)
}
