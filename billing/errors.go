package billing

import (
	"errors"
	"fmt"
)

// ErrDuplicateInvoice means the duplicate-detection key (client, type,
// period) already has an invoice and neither force nor resend was requested.
// Callers report it as a skip, not a failure.
var ErrDuplicateInvoice = errors.New("invoice already exists for this period")

// ErrPaidInvoice means force regeneration targeted a paid invoice and
// allow-paid was not set. Deleting a reconciled record must be explicit.
var ErrPaidInvoice = errors.New("invoice is already paid; pass allow-paid to delete and regenerate it")

// NumberingError reports an existing invoice number whose numeric suffix
// cannot be parsed. Generation aborts; the sequence is never guessed or
// reset.
type NumberingError struct {
	Number string
	Err    error
}

func (e *NumberingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed invoice number %q: %v", e.Number, e.Err)
	}
	return fmt.Sprintf("malformed invoice number %q", e.Number)
}

func (e *NumberingError) Unwrap() error {
	return e.Err
}
