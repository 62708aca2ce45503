package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/utils"
)

type fakeAdminRepo struct {
	admin *models.Admin
	hash  string
}

func (f *fakeAdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, string, error) {
	if f.admin != nil && f.admin.Email == email {
		return f.admin, f.hash, nil
	}
	return nil, "", nil
}

func (f *fakeAdminRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	if f.admin != nil && f.admin.ID == id {
		return f.admin, nil
	}
	return nil, nil
}

func TestLoginIssuesAdminToken(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	repo := &fakeAdminRepo{
		admin: &models.Admin{ID: "adm-1", Email: "hr@example.com", Name: "HR", Active: true},
		hash:  hash,
	}
	svc := NewAuthService(repo, "auth-test-secret")

	tok, u, err := svc.Login(context.Background(), "hr@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "adm-1", u.ID)

	claims, err := utils.ParseJWT("auth-test-secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "adm-1", claims.UserID)
	assert.True(t, claims.Admin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	repo := &fakeAdminRepo{
		admin: &models.Admin{ID: "adm-1", Email: "hr@example.com", Active: true},
		hash:  hash,
	}
	svc := NewAuthService(repo, "auth-test-secret")

	_, _, err = svc.Login(context.Background(), "hr@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDeactivatedAdmin(t *testing.T) {
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	repo := &fakeAdminRepo{
		admin: &models.Admin{ID: "adm-1", Email: "hr@example.com", Active: false},
		hash:  hash,
	}
	svc := NewAuthService(repo, "auth-test-secret")

	_, _, err = svc.Login(context.Background(), "hr@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
