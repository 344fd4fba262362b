package domain

import (
	"errors"
	"time"
)

// Brand representa uma marca do catálogo (Persol, Ray-Ban, ...).
type Brand struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const MaxBrandNameLength = 100

var (
	ErrBrandNameRequired = errors.New("O nome da marca não pode ser vazio.")
	ErrBrandNameTooLong  = errors.New("O nome da marca não pode exceder 100 caracteres.")
	ErrBrandNameTaken    = errors.New("Já existe uma marca com este nome.")
	ErrBrandInUse        = errors.New("A marca possui produtos vinculados e não pode ser removida.")
	ErrBrandNotFound     = errors.New("Marca não encontrada.")
)
