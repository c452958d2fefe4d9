package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDuplicateEntry signals the catalog key unique constraint fired.
// Callers present this the same way as the advisory duplicate check.
var ErrDuplicateEntry = errors.New("entry already exists for this tier/type/biome")

// mysqlDuplicateKey is the server error number for a unique-key violation.
const mysqlDuplicateKey = 1062

// translateError maps driver-level errors onto repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateKey {
		return ErrDuplicateEntry
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEntry
	}
	return err
}

// IsNotFound reports whether err is the record-not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
