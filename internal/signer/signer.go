// Package signer computes the HMAC request signatures the Katcha backend
// expects. The signature binds method, path (with query string) and a Unix
// timestamp to the shared API secret, so the secret never travels on the
// wire.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Signature is a computed request signature together with the inputs that
// produced it, kept for request logging and debugging.
type Signature struct {
	Timestamp    string
	StringToSign string
	Hex          string
}

// Canonicalize builds the canonical string to sign. The method is
// upper-cased and a trailing slash is stripped from the path unless the
// path is exactly "/". The path includes the query string but not the host.
func Canonicalize(method, pathWithQuery, timestamp string) string {
	m := strings.ToUpper(method)
	p := pathWithQuery
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return fmt.Sprintf("method=%s&path=%s&timestamp=%s", m, p, timestamp)
}

// Sign computes the lowercase-hex HMAC-SHA256 of the canonical string under
// secret. Identical inputs always produce identical output.
func Sign(method, pathWithQuery, timestamp, secret string) Signature {
	stringToSign := Canonicalize(method, pathWithQuery, timestamp)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stringToSign))

	return Signature{
		Timestamp:    timestamp,
		StringToSign: stringToSign,
		Hex:          hex.EncodeToString(mac.Sum(nil)),
	}
}
