package workflow

import (
	"errors"
	"fmt"
	"net/http"
)

// Every failure the engine surfaces wraps one of these sentinels, so callers
// can branch with errors.Is without parsing messages.
var (
	ErrValidation               = errors.New("validation failed")
	ErrIllegalTransition        = errors.New("illegal status transition")
	ErrPaymentRequired          = errors.New("payment required")
	ErrPartialPaymentNotAllowed = errors.New("partial payment not allowed")
	ErrInvalidAmount            = errors.New("invalid payment amount")
	ErrTableUnavailable         = errors.New("table unavailable")
	ErrInvalidTable             = errors.New("table not found")
	ErrOrderNotOnTable          = errors.New("order not on table")
	ErrConcurrencyConflict      = errors.New("concurrent modification, reload and retry")
	ErrNotFound                 = errors.New("not found")
)

// IllegalTransitionError carries enough context for the UI to re-render the
// action buttons without another round trip.
type IllegalTransitionError struct {
	From      string
	Requested string
	Allowed   []string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %q to %q (allowed: %v)", e.From, e.Requested, e.Allowed)
}

func (e *IllegalTransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// PaymentRequiredError reports how much is still outstanding.
type PaymentRequiredError struct {
	Remaining float64
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("payment required: %.2f outstanding", e.Remaining)
}

func (e *PaymentRequiredError) Is(target error) bool { return target == ErrPaymentRequired }

// HTTPStatus maps engine errors to response codes for the gin layer.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrTableUnavailable),
		errors.Is(err, ErrOrderNotOnTable):
		return http.StatusConflict

	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired

	case errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict

	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrPartialPaymentNotAllowed),
		errors.Is(err, ErrInvalidTable):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
