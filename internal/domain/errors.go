package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrUnauthenticated = errors.New("no autenticado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrConflict        = errors.New("conflicto con el estado actual")
	// ErrPartialCreation la creación en pareja (empresa+admin, sede+responsable) no pudo completarse.
	// La transacción se revierte; no queda ninguna de las dos mitades.
	ErrPartialCreation = errors.New("creación incompleta revertida")
)

// Conflictos concretos. Todos envuelven ErrConflict para que errors.Is(err, ErrConflict) funcione.
var (
	ErrEmailAlreadyExists   = conflict("el email ya está registrado")
	ErrCompanyNameTaken     = conflict("ya existe una empresa con ese nombre")
	ErrDepotCompanyMismatch = conflict("la sede pertenece a otra empresa")
	ErrProtectedMember      = conflict("el usuario no es un miembro eliminable")
)

type conflictError struct{ msg string }

func conflict(msg string) error { return &conflictError{msg: msg} }

func (e *conflictError) Error() string { return e.msg }
func (e *conflictError) Unwrap() error { return ErrConflict }
