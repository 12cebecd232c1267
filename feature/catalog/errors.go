package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when an entry or installed record does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrInvalidKey is returned when source or external id is blank.
	ErrInvalidKey = errors.New("catalog: source and external id are required")
	// ErrNameRequired is returned when creating an entry without a name.
	ErrNameRequired = errors.New("catalog: name is required for new entries")
	// ErrCounterMissing is returned when the version counter row is absent.
	ErrCounterMissing = errors.New("catalog: version counter not initialised")
)

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrNameRequired)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
