package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa junto con su administrador.
type CreateCompanyRequest struct {
	Name    string    `json:"name" validate:"required,min=1,max=200"`
	Address string    `json:"address"`
	Admin   UserInput `json:"admin" validate:"required"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyCreatedResponse empresa recién creada y su administrador.
type CompanyCreatedResponse struct {
	Company CompanyResponse `json:"company"`
	Admin   UserResponse    `json:"admin"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
