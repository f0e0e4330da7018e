package repository

import (
	"github.com/trackmyoffer/bff/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	ProfileDirectory ProfileDirectoryRepository
	Activity         ActivityRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		ProfileDirectory: NewProfileDirectoryRepository(db),
		Activity:         NewActivityRepository(db),
	}
}
