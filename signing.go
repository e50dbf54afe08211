package sigv4auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DeriveSigningKey runs the SigV4 key-derivation chain for the given scope:
//
//	kDate    = HMAC("AWS4" + secret, date)
//	kRegion  = HMAC(kDate, region)
//	kService = HMAC(kRegion, service)
//	kSigning = HMAC(kService, "aws4_request")
//
// Intermediate keys are cleared once the next stage has been computed. The
// returned key is owned by the caller.
func DeriveSigningKey(secretKey string, scope CredentialScope) []byte {
	seed := make([]byte, 0, len("AWS4")+len(secretKey))
	seed = append(seed, "AWS4"...)
	seed = append(seed, secretKey...)

	kDate := hmacSHA256(seed, []byte(scope.Date))
	clear(seed)

	kRegion := hmacSHA256(kDate, []byte(scope.Region))
	clear(kDate)

	kService := hmacSHA256(kRegion, []byte(scope.Service))
	clear(kRegion)

	kSigning := hmacSHA256(kService, []byte(ScopeTerminator))
	clear(kService)

	return kSigning
}

// ComputeSignature returns the lowercase hex HMAC-SHA256 of stringToSign
// keyed by signingKey.
func ComputeSignature(signingKey []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))
}

// Sign computes the signature a client holding secretKey would send for
// stringToSign. The scope is read from the string-to-sign itself.
func Sign(secretKey, stringToSign string) (string, error) {
	scope, err := ParseScope(stringToSign)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	signingKey := DeriveSigningKey(secretKey, scope)
	defer clear(signingKey)

	return ComputeSignature(signingKey, stringToSign), nil
}

// BuildStringToSign assembles a string-to-sign from its four lines.
func BuildStringToSign(requestTime time.Time, scope CredentialScope, hashedCanonicalRequest string) string {
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		SignatureAlgorithm,
		requestTime.UTC().Format(DateTimeFormat),
		scope.String(),
		hashedCanonicalRequest,
	)
}

// HashCanonicalRequest returns the lowercase hex SHA-256 of a canonical request,
// the last line of a string-to-sign.
func HashCanonicalRequest(canonicalRequest string) string {
	h := sha256.Sum256([]byte(canonicalRequest))
	return hex.EncodeToString(h[:])
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
