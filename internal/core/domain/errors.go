package domain

import "errors"

// Error taxonomy shared by every service. Handlers map these with errors.Is.
var (
	ErrUnauthenticated    = errors.New("user is not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrPlanRestricted     = errors.New("feature not included in plan")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict with current state")
	ErrUpstreamGeneration = errors.New("upstream generation failed")
)

// Entity-specific not-found errors still match ErrNotFound.
var (
	ErrUserNotFound         = wrap(ErrNotFound, "user not found")
	ErrOrganizationNotFound = wrap(ErrNotFound, "organization not found")
	ErrMembershipNotFound   = wrap(ErrNotFound, "membership not found")
	ErrGoalNotFound         = wrap(ErrNotFound, "goal not found")
	ErrThreadNotFound       = wrap(ErrNotFound, "thread not found")
	ErrAlreadyMember        = wrap(ErrConflict, "user is already a member of this organization")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// InvalidInput builds a validation error carrying a user-facing message.
func InvalidInput(msg string) error {
	return wrap(ErrValidation, msg)
}

// PublicMessage returns the user-facing text of err: the message of the
// innermost kind error when there is one, err.Error() otherwise.
func PublicMessage(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return err.Error()
}
