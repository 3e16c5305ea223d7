package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kdb "github.com/opst/taskboard/pkg/db"
)

// requested data is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}
func (m Missing) Unwrap() error {
	return kdb.ErrMissing
}

// requested data is found too much.
type TooMuch struct {
	Table    string
	Identity string
	Expected int
}

var _ error = TooMuch{}

func (t TooMuch) Error() string {
	return fmt.Sprintf(
		"%s is found in %s more than %d times",
		t.Identity, t.Table, t.Expected,
	)
}

func (t TooMuch) Unwrap() error {
	return kdb.ErrTooMuch
}

// a row conflicts with other rows on the constraint.
type Conflict struct {
	Table      string
	Constraint string
	Cause      error
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return fmt.Sprintf("conflict in %s (%s): %s", c.Table, c.Constraint, c.Cause)
}

func (c Conflict) Unwrap() []error {
	return []error{kdb.ErrConflict, c.Cause}
}

// AsConflict converts unique violations into Conflict.
//
// Other errors are returned as they are.
func AsConflict(err error) error {
	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) || pgerr.Code != pgerrcode.UniqueViolation {
		return err
	}
	return Conflict{Table: pgerr.TableName, Constraint: pgerr.ConstraintName, Cause: err}
}

// IsForeignKeyViolation tells whether err is caused by a missing referenced row.
func IsForeignKeyViolation(err error) bool {
	pgerr := new(pgconn.PgError)
	return errors.As(err, &pgerr) && pgerr.Code == pgerrcode.ForeignKeyViolation
}

// IsInvalidText tells whether err is caused by malformed input, like a bad uuid.
func IsInvalidText(err error) bool {
	pgerr := new(pgconn.PgError)
	return errors.As(err, &pgerr) && pgerr.Code == pgerrcode.InvalidTextRepresentation
}
