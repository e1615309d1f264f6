package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateUser signals a unique-key violation on username or email.
var ErrDuplicateUser = errors.New("user already exists")

const mysqlErrDuplicateEntry = 1062

// isDuplicateKeyErr reports whether err is a MySQL duplicate-key violation.
// Natural-key insert races are recovered by falling back to the existing row.
func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}
