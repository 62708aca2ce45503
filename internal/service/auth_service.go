package service

import (
	"context"
	"errors"
	"time"

	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
	"github.com/itsnaaur/OpenLine/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates administrators. There is no self-registration:
// reporters are anonymous by design and admin accounts are seeded out of
// band.
type AuthService struct {
	admins        repository.AdminRepository
	sessionSecret string
}

func NewAuthService(admins repository.AdminRepository, sessionSecret string) *AuthService {
	return &AuthService{admins: admins, sessionSecret: sessionSecret}
}

func (a *AuthService) Login(ctx context.Context, email, password string) (token string, admin *models.Admin, err error) {
	u, hash, err := a.admins.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.Active {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, true, 24*time.Hour)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}
