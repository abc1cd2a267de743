package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lock adds a FOR UPDATE row lock to the given transaction handle.
func Lock(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
