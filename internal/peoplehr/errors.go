package peoplehr

import "fmt"

// ProtocolError means the portal's markup or JSON did not contain a field the
// handshake needs. The flow is reverse engineered from the browser login, so
// any missing field aborts hard instead of defaulting.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "peoplehr: " + e.Reason
}

// AuthenticationError means the portal rejected the submitted credentials.
type AuthenticationError struct {
	Email string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("peoplehr: login rejected for %s", e.Email)
}

// CryptoError wraps a failure to parse or use the portal's RSA public key.
type CryptoError struct {
	Err error
}

func (e *CryptoError) Error() string {
	return "peoplehr: " + e.Err.Error()
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}
