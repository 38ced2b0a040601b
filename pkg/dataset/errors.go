package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errUnreadableWorkbook = errors.New("unreadable workbook")
	errNoSheet            = errors.New("no worksheet found")
	errTooManyRows        = errors.New("row limit exceeded")

	ErrNoUploads = errors.New("no uploads recorded")
)

// SchemaError marks a workbook the loader must reject outright: a missing
// required column or a file that cannot be read. Row-level findings never
// produce a SchemaError; those are returned as validation data.
type SchemaError struct {
	reason  error
	Missing []string
}

func (e SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
	}
	return e.reason.Error()
}

func (e SchemaError) Unwrap() error {
	return e.reason
}

func IsSchemaError(err error) bool {
	var se SchemaError
	return errors.As(err, &se)
}
