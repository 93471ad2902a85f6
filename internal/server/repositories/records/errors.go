package records

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify turns data and constraint violations into validation errors so
// that a bad row is rejected on its own instead of failing like an outage.
// Lost or refused connections are marked common.ErrorUnavailable.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.SQLState()
		if strings.HasPrefix(code, "22") || // data_exception
			strings.HasPrefix(code, "23") { // integrity_constraint_violation
			return fmt.Errorf("%w: %s: %s", common.ErrorValidation, op, pgErr.Message)
		}
	}
	if isConnError(err) {
		return fmt.Errorf("%w: %s: %w", common.ErrorUnavailable, op, err)
	}
	return fmt.Errorf("%s: db error: %w", op, err)
}

func isConnError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.SQLState()
		return strings.HasPrefix(code, "08") || // connection_exception
			code == "57P01" || code == "57P02" || code == "57P03" // shutdown, cannot connect now
	}
	return false
}
