package domain

import "errors"

// ValidationError marks missing or malformed request input; handlers surface
// it as a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BusinessRuleError marks a request that is well-formed but not allowed by the
// attendance rules. Handlers surface it as a generic failure message.
type BusinessRuleError struct {
	Code    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

var (
	ErrAlreadyClockedIn = &BusinessRuleError{Code: "ALREADY_CLOCKED_IN", Message: "Anda sudah clock in hari ini."}
	ErrNotClockedInYet  = &BusinessRuleError{Code: "NOT_CLOCKED_IN", Message: "Anda belum clock in hari ini."}
)

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}
