package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Logistica-api/internal/domain"
)

// Códigos SQLSTATE usados.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Restricciones con traducción a error de dominio propio.
const (
	constraintCompanyNameKey   = "companies_name_key_key"
	constraintUsersEmail       = "users_email_lower_key"
	constraintProductsSKU      = "products_company_sku_key"
	constraintUserDepotCompany = "users_depot_company_fk"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// mapConstraintError traduce violaciones de integridad a errores de dominio. El resto se devuelve tal cual.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintCompanyNameKey:
			return domain.ErrCompanyNameTaken
		case constraintUsersEmail:
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrConflict)
	case pgForeignKeyViolation:
		if pgErr.ConstraintName == constraintUserDepotCompany {
			return domain.ErrDepotCompanyMismatch
		}
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrInvalidInput)
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// validID descarta identificadores que no son UUID antes de llegar a la base (evita 22P02 en columnas uuid).
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullable convierte "" en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
