package domain

import "context"

// Role types
const (
	RoleAdmin   = "Admin"
	RoleCashier = "Cashier"
)

// User is an operator of the till
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Role         string `json:"role" gorm:"not null;default:'Admin'"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "Users"
}

// IsAdmin checks if user has admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCashier
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (User, bool, error)
	FindByUsername(ctx context.Context, username string) (User, bool, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}
