package peoplehr

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// EncryptCredential encrypts plaintext with the portal's PEM-encoded RSA
// public key using PKCS#1 v1.5 padding and returns the ciphertext base64
// encoded, matching what the portal's login form submits. Only encryption
// happens here; the portal holds the private key.
func EncryptCredential(publicKeyPEM []byte, plaintext string) (string, error) {
	pub, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return "", &CryptoError{Err: err}
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plaintext))
	if err != nil {
		return "", &CryptoError{Err: fmt.Errorf("encrypt credential: %w", err)}
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func parsePublicKey(publicKeyPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, errors.New("public key is not valid PEM")
	}

	// The portal has served both PKIX and PKCS#1 encodings over time.
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("public key is not RSA")
		}
		return pub, nil
	}

	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pub, nil
}
