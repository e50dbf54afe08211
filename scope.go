package sigv4auth

import (
	"fmt"
	"strings"
	"time"
)

const (
	SignatureAlgorithm = "AWS4-HMAC-SHA256"
	ScopeTerminator    = "aws4_request"
	DateTimeFormat     = "20060102T150405Z"
	DateFormat         = "20060102"
)

// scopeLine is the index of the credential scope line in a string-to-sign.
const scopeLine = 2

// CredentialScope binds a derived signing key to a date, region and service.
type CredentialScope struct {
	Date    string
	Region  string
	Service string
}

// String returns the scope in its wire form: date/region/service/aws4_request.
func (s CredentialScope) String() string {
	return s.Date + "/" + s.Region + "/" + s.Service + "/" + ScopeTerminator
}

// ParseScope extracts the credential scope from the third line of a string-to-sign.
//
// The string-to-sign has the shape:
//
//	AWS4-HMAC-SHA256
//	20150830T123600Z
//	20150830/us-east-1/iam/aws4_request
//	<hex sha256 of the canonical request>
//
// Only the scope line is inspected. Every structural problem is reported as
// an error wrapping ErrMalformedScope.
func ParseScope(stringToSign string) (CredentialScope, error) {
	lines := strings.SplitN(stringToSign, "\n", scopeLine+2)
	if len(lines) <= scopeLine {
		return CredentialScope{}, fmt.Errorf("missing scope line: %w", ErrMalformedScope)
	}

	parts := strings.Split(lines[scopeLine], "/")
	if len(parts) != 4 {
		return CredentialScope{}, fmt.Errorf("expected 4 scope segments, got %d: %w", len(parts), ErrMalformedScope)
	}

	if parts[3] != ScopeTerminator {
		return CredentialScope{}, fmt.Errorf("invalid scope terminator: expected %s: %w", ScopeTerminator, ErrMalformedScope)
	}

	if !isScopeDate(parts[0]) {
		return CredentialScope{}, fmt.Errorf("invalid scope date %q: %w", parts[0], ErrMalformedScope)
	}

	if parts[1] == "" || parts[2] == "" {
		return CredentialScope{}, fmt.Errorf("empty region or service: %w", ErrMalformedScope)
	}

	return CredentialScope{
		Date:    parts[0],
		Region:  parts[1],
		Service: parts[2],
	}, nil
}

func isScopeDate(s string) bool {
	if len(s) != len(DateFormat) {
		return false
	}
	_, err := time.Parse(DateFormat, s)
	return err == nil
}
