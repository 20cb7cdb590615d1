package sqlutil

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"

	"github.com/mcdev12/arena/go/internal/apperrors"
)

// Classify tags driver errors with the apperrors kind callers branch on.
// Errors that already carry a kind, and nil, are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrStoreUnavailable,
		apperrors.ErrStaleWrite,
		apperrors.ErrValidation,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", apperrors.ErrNotFound, err)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			// connection exception, operator intervention (shutdown)
			return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		case pqErr.Code == "40001":
			return fmt.Errorf("%w: %v", apperrors.ErrStaleWrite, err)
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %s already exists", apperrors.ErrValidation, strings.TrimSpace(pqErr.Constraint))
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return err
}
