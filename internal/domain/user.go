package domain

import (
	"errors"
	"fmt"
	"time"
)

// User representa a conta de acesso (cliente, funcionário ou administrador).
type User struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Oculta o hash da senha no JSON de resposta
	FullName     string     `json:"full_name" db:"full_name"`
	Phone        string     `json:"phone,omitempty" db:"phone"`
	Role         UserRole   `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// UserRole é o papel do usuário. O conjunto é fechado: customer, staff, admin.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

// Valid informa se o papel pertence ao conjunto fechado.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Customer é o perfil de compra ligado 1:1 a um usuário com papel customer.
type Customer struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	CustomerCode string    `json:"customer_code" db:"customer_code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CustomerCode gera o código legível do cliente a partir do ID do usuário (CUS_000042).
func CustomerCode(userID int64) string {
	return fmt.Sprintf("CUS_%06d", userID)
}

// Claims são os dados de identidade transportados no token de sessão.
type Claims struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// IsAdmin é falso para qualquer papel fora do conjunto conhecido.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Registration representa o payload de entrada para o cadastro.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// LoginResult é devolvido após autenticação bem-sucedida.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

var (
	ErrInvalidCredentials = errors.New("Credenciais inválidas.")
	ErrEmailTaken         = errors.New("Este email já está cadastrado.")
	ErrUserNotFound       = errors.New("Usuário não encontrado.")
	ErrSelfDelete         = errors.New("Um administrador não pode remover a própria conta.")
)
