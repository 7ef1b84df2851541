package repository

import (
	"database/sql"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsNotFound reports whether err means the identifier did not resolve,
// regardless of the backing store.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments)
}
