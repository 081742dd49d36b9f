package util

import (
	"errors"
	"fmt"
)

// Failure codes for the migration error taxonomy.
const (
	CodeTransportFailure        = "TRANSPORT_FAILURE"
	CodeMalformedData           = "MALFORMED_DATA"
	CodeTicketProcessingFailure = "TICKET_PROCESSING_FAILURE"
	CodeCommentCreationFailure  = "COMMENT_CREATION_FAILURE"
)

// MigrationError standardizes application errors.
type MigrationError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *MigrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// NewTransportFailure wraps a failed network/API call. Callers degrade to
// an empty result at the smallest enclosing scope; this never propagates
// past the function that made the call.
func NewTransportFailure(op string, err error) error {
	return &MigrationError{
		Code:    CodeTransportFailure,
		Message: fmt.Sprintf("%s failed", op),
		Err:     err,
	}
}

// NewMalformedData marks a field of unexpected shape. Always defaulted and
// logged at warning level, never raised past the parsing boundary.
func NewMalformedData(field string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &MigrationError{
		Code:    CodeMalformedData,
		Message: fmt.Sprintf("malformed %s", field),
		Details: details,
	}
}

// NewTicketProcessingFailure wraps any failure caught at the per-ticket
// boundary; processing continues with the next ticket.
func NewTicketProcessingFailure(ticketID string, err error) error {
	return &MigrationError{
		Code:    CodeTicketProcessingFailure,
		Message: fmt.Sprintf("processing ticket %s failed", ticketID),
		Details: map[string]any{"ticket_id": ticketID},
		Err:     err,
	}
}

// NewCommentCreationFailure wraps a per-timeline-entry comment failure;
// remaining entries are still attempted.
func NewCommentCreationFailure(ticketID string, err error) error {
	return &MigrationError{
		Code:    CodeCommentCreationFailure,
		Message: fmt.Sprintf("creating comment on ticket %s failed", ticketID),
		Details: map[string]any{"ticket_id": ticketID},
		Err:     err,
	}
}

// ToMigrationError converts generic errors to MigrationError.
func ToMigrationError(err error) *MigrationError {
	if err == nil {
		return nil
	}
	var migErr *MigrationError
	if errors.As(err, &migErr) {
		return migErr
	}
	return &MigrationError{
		Code:    CodeTicketProcessingFailure,
		Message: "unexpected failure",
		Err:     err,
	}
}

// HasCode reports whether err carries the given failure code.
func HasCode(err error, code string) bool {
	migErr := ToMigrationError(err)
	return migErr != nil && migErr.Code == code
}
