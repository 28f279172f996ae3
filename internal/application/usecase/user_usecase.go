package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// MemberUseCase casos de uso para miembros de sede (cargos delivery, pre_sales, warehouse).
// La autorización ya la decidió el Guard; aquí solo se aplican las reglas de la jerarquía.
type MemberUseCase struct {
	repos repository.Repositories
	tx    ports.TxRunner
}

// NewMemberUseCase construye el caso de uso.
func NewMemberUseCase(repos repository.Repositories, tx ports.TxRunner) *MemberUseCase {
	return &MemberUseCase{repos: repos, tx: tx}
}

// Create crea un miembro en la sede indicada. Solo se aceptan cargos; admin y responsable
// nacen con su empresa o su sede.
func (uc *MemberUseCase) Create(ctx context.Context, depotID string, in dto.CreateMemberRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil || !role.IsJobTitle() {
		return nil, fmt.Errorf("rol %q no asignable a un miembro: %w", in.Role, domain.ErrInvalidInput)
	}
	if depotID == "" {
		return nil, fmt.Errorf("sede obligatoria: %w", domain.ErrInvalidInput)
	}
	user, err := newUser(dto.UserInput{Email: in.Email, Password: in.Password, Name: in.Name}, role)
	if err != nil {
		return nil, err
	}
	err = uc.tx.RunInTx(ctx, func(r repository.Repositories) error {
		depot, err := r.Depots.GetByID(ctx, depotID)
		if err != nil {
			return err
		}
		if depot == nil {
			return domain.ErrNotFound
		}
		if err := user.AttachTo(depot); err != nil {
			return fmt.Errorf("%v: %w", err, domain.ErrDepotCompanyMismatch)
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return EntityToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID. domain.ErrNotFound si no existe.
func (uc *MemberUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return EntityToUserResponse(user), nil
}

// List lista usuarios dentro del alcance devuelto por el Guard.
func (uc *MemberUseCase) List(ctx context.Context, scope access.ScopeFilter, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	list, err := uc.repos.Users.List(ctx, scope, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *EntityToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update cambia nombre, cargo o estado de un miembro. Un admin o responsable no se edita por aquí.
// Empresa y sede no se escriben: solo AttachToDepot las cambia.
func (uc *MemberUseCase) Update(ctx context.Context, id string, in dto.UpdateMemberRequest) (*dto.UserResponse, error) {
	var role entity.Role
	if in.Role != nil {
		parsed, err := entity.ParseRole(*in.Role)
		if err != nil || !parsed.IsJobTitle() {
			return nil, fmt.Errorf("rol %q no asignable a un miembro: %w", *in.Role, domain.ErrInvalidInput)
		}
		role = parsed
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.UserStatusActive, entity.UserStatusInactive:
		default:
			return nil, fmt.Errorf("estado %q: %w", *in.Status, domain.ErrInvalidInput)
		}
	}

	var out *entity.User
	err := uc.tx.RunInTx(ctx, func(r repository.Repositories) error {
		user, err := uc.member(ctx, r, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			user.Name = strings.TrimSpace(*in.Name)
		}
		if in.Role != nil {
			user.Role = role
		}
		if in.Status != nil {
			user.Status = *in.Status
		}
		user.UpdatedAt = time.Now()
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		out, err = r.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if out == nil {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return EntityToUserResponse(out), nil
}

// AttachToDepot mueve un miembro a otra sede. Es el único camino que cambia la sede de un usuario
// existente y se ejecuta en una transacción que bloquea la sede destino.
func (uc *MemberUseCase) AttachToDepot(ctx context.Context, id, depotID string) (*dto.UserResponse, error) {
	var out *entity.User
	err := uc.tx.RunInTx(ctx, func(r repository.Repositories) error {
		user, err := uc.member(ctx, r, id)
		if err != nil {
			return err
		}
		depot, err := r.Depots.GetForUpdate(ctx, depotID)
		if err != nil {
			return err
		}
		if depot == nil {
			return domain.ErrNotFound
		}
		if err := user.AttachTo(depot); err != nil {
			return fmt.Errorf("%v: %w", err, domain.ErrDepotCompanyMismatch)
		}
		user.UpdatedAt = time.Now()
		out = user
		return r.Users.SetDepot(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return EntityToUserResponse(out), nil
}

// Delete elimina un miembro. Admin y responsable solo desaparecen con la cascada de su nodo.
func (uc *MemberUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.member(ctx, uc.repos, id); err != nil {
		return err
	}
	return uc.repos.Users.Delete(ctx, id)
}

// member carga un usuario y exige que tenga cargo (no admin, responsable ni super admin).
func (uc *MemberUseCase) member(ctx context.Context, r repository.Repositories, id string) (*entity.User, error) {
	user, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if !user.Role.IsJobTitle() {
		return nil, domain.ErrProtectedMember
	}
	return user, nil
}

// newUser prepara un usuario activo con el password hasheado. El hash se calcula fuera de
// cualquier transacción.
func newUser(in dto.UserInput, role entity.Role) (*entity.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("email y password obligatorios: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("password demasiado largo: %w", domain.ErrInvalidInput)
		}
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := time.Now()
	return &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// pairedCreationError aplica la política de la creación en pareja: conflictos, entradas inválidas
// y padres inexistentes se devuelven tal cual; cualquier otro fallo es una creación incompleta.
func pairedCreationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrPartialCreation, err)
	}
}

// EntityToUserResponse es el único mapeo de usuario a respuesta; también lo usa el login.
func EntityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.Company(),
		DepotID:   u.Depot(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
