package service

import (
	"context"
	"crypto/subtle"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

// AdminAuthService проверяет учётные данные единственного администратора из конфигурации.
type AdminAuthService struct {
	username     string
	passwordHash []byte
	tokens       *TokenManager
}

func NewAdminAuthService(username, passwordHash string, tokens *TokenManager) *AdminAuthService {
	return &AdminAuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
	}
}

// Login возвращает access токен при верных логине и пароле.
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.passwordHash) == 0 {
		return nil, apperror.New(apperror.ErrCodeForbidden, "admin access is not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// bcrypt выполняется и при неверном логине.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		logger.WithFields(logrus.Fields{"username": username}).Warn("неудачная попытка входа в админ-панель")
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(s.username, RoleAdmin)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "could not issue access token")
	}
	return token, nil
}

// Authorize проверяет токен и роль администратора.
func (s *AdminAuthService) Authorize(token string) (string, error) {
	subject, role, err := s.tokens.ParseAccess(token)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeUnauthorized, "invalid or expired token")
	}
	if role != RoleAdmin {
		return "", apperror.New(apperror.ErrCodeForbidden, "admin role required")
	}
	return subject, nil
}
