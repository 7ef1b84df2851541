package repository

import "cargosur/models"

// UserRepository defines the interface for operator account operations
type UserRepository interface {
	CreateUser(user *models.AppUser) error
	GetUserByEmail(email string) (*models.AppUser, error)
}
