package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/repositories"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 24 * time.Hour

// AuthService signs admin-console operators in. Players never authenticate
// against this backend; only admin routes are gated.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (string, *models.AdminUser, error)
}

type authService struct {
	admins    repositories.AdminRepository
	jwtSecret []byte
}

func NewAuthService(admins repositories.AdminRepository, jwtSecret []byte) AuthService {
	return &authService{admins: admins, jwtSecret: jwtSecret}
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(adminTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, admin, nil
}
