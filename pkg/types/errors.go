package types

import "errors"

var (
	ErrDonorNotFound     = errors.New("donor not found")
	ErrDonationNotFound  = errors.New("donation not found")
	ErrPrayerNotFound    = errors.New("prayer request not found")
	ErrFlyerNotFound     = errors.New("crusade flyer not found")
	ErrImageNotFound     = errors.New("ministry image not found")
	ErrTestimonyNotFound = errors.New("testimony not found")
)

// ValidationError marks bad user input; handlers re-prompt instead of
// persisting anything.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
