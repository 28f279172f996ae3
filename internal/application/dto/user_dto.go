package dto

import "time"

// UserInput credenciales del usuario que se crea en pareja con una empresa (admin) o una sede (responsable).
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=200"`
}

// CreateMemberRequest entrada para crear un miembro de sede. Role es un cargo: delivery, pre_sales o warehouse.
type CreateMemberRequest struct {
	DepotID  string `json:"depot_id" validate:"required,uuid"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	Role     string `json:"role" validate:"required,oneof=delivery pre_sales warehouse"`
}

// UpdateMemberRequest entrada para actualizar un miembro (campos opcionales).
type UpdateMemberRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Role   *string `json:"role" validate:"omitempty,oneof=delivery pre_sales warehouse"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// AttachMemberRequest mueve un miembro a otra sede de la misma empresa.
type AttachMemberRequest struct {
	DepotID string `json:"depot_id" validate:"required,uuid"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id,omitempty"`
	DepotID   string    `json:"depot_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
