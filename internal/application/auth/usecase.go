package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, logout y alta del super admin.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	revocations ports.RevocationStore
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, revocations ports.RevocationStore, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, revocations: revocations, jwtCfg: jwtCfg}
}

// Login verifica email/password y emite un JWT con la empresa y sede vigentes del usuario.
// Usuario inexistente, password incorrecto o usuario inactivo devuelven domain.ErrUnauthenticated.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if !user.IsActive() {
		return nil, domain.ErrUnauthenticated
	}
	sub := jwt.Subject{
		UserID:    user.ID,
		CompanyID: user.Company(),
		DepotID:   user.Depot(),
		Role:      user.Role.String(),
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, sub, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      *usecase.EntityToUserResponse(user),
	}, nil
}

// Logout revoca el token del principal hasta su expiración.
func (uc *AuthUseCase) Logout(ctx context.Context, p access.Principal) error {
	if p.TokenID == "" {
		return domain.ErrUnauthenticated
	}
	return uc.revocations.Revoke(ctx, p.TokenID, p.ExpiresAt)
}

// EnsureSuperAdmin da de alta el super admin configurado si todavía no existe. Es idempotente:
// devuelve false si ya estaba. Un email ocupado por otro rol es un conflicto.
func (uc *AuthUseCase) EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, fmt.Errorf("super admin sin credenciales: %w", domain.ErrInvalidInput)
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if existing.Role != entity.RoleSuperAdmin {
			return false, fmt.Errorf("email %s ocupado por rol %s: %w", email, existing.Role, domain.ErrEmailAlreadyExists)
		}
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Super Admin",
		Role:         entity.RoleSuperAdmin,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
