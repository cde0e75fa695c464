// Package sigv4 verifies AWS Signature Version 4 Authorization headers
// (spec.md §4.J). It is grounded on the teacher's pkg/auth rate limiters in
// its shape — a small stateless verifier struct plus a resolver interface —
// but the algorithm itself is the fixed SigV4 chained-HMAC construction.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"

	"backend2/internal/apperr"
)

const algorithm = "AWS4-HMAC-SHA256"

// CredentialResolver resolves an AWS access key id to its secret key.
type CredentialResolver interface {
	SecretFor(accessKeyID string) (secret string, err error)
}

// Result is what a successful verification establishes about the caller.
type Result struct {
	AccessKeyID   string
	Region        string
	Service       string
	SignedHeaders []string
	Date          string // yyyymmdd
}

// Request is the subset of an HTTP request the verifier needs. Headers
// must be supplied with lowercase names.
type Request struct {
	Method      string
	CanonicalURI string // already percent-encoded path, "/" if empty
	RawQuery    string
	Headers     http.Header // lowercase keys
	ContentHash string      // hex-lowercase SHA-256 of the body
}

// Verify implements spec.md §4.J's eight-step SigV4 verification.
func Verify(req Request, resolver CredentialResolver) (*Result, error) {
	authHeader := headerValue(req.Headers, "authorization")
	if authHeader == "" {
		return nil, apperr.MissingAuthHeader()
	}

	cred, signedHeaderNames, signature, err := parseAuthorizationHeader(authHeader)
	if err != nil {
		return nil, err
	}

	date, region, service, err := splitCredentialScope(cred)
	if err != nil {
		return nil, err
	}

	timestamp := headerValue(req.Headers, "x-amz-date")
	if timestamp == "" {
		return nil, apperr.InvalidAuthHeader("missing x-amz-date header")
	}

	secret, err := resolver.SecretFor(cred.AccessKeyID)
	if err != nil {
		return nil, apperr.AccessKeyNotFound(cred.AccessKeyID)
	}

	canonicalHeaders, signedHeadersLine, err := buildCanonicalHeaders(req.Headers, signedHeaderNames)
	if err != nil {
		return nil, err
	}

	canonicalURI := req.CanonicalURI
	if canonicalURI == "" {
		canonicalURI = "/"
	}
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalURI,
		req.RawQuery,
		canonicalHeaders,
		signedHeadersLine,
		req.ContentHash,
	}, "\n")

	hashedCanonicalRequest := hexSHA256([]byte(canonicalRequest))

	scope := date + "/" + region + "/" + service + "/aws4_request"
	stringToSign := strings.Join([]string{
		algorithm,
		timestamp,
		scope,
		hashedCanonicalRequest,
	}, "\n")

	signingKey := deriveSigningKey(secret, date, region, service)
	expected := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, apperr.SignatureDoesNotMatch()
	}

	return &Result{
		AccessKeyID:   cred.AccessKeyID,
		Region:        region,
		Service:       service,
		SignedHeaders: signedHeaderNames,
		Date:          date,
	}, nil
}

type credential struct {
	AccessKeyID string
	Date        string
	Region      string
	Service     string
}

// parseAuthorizationHeader parses:
//
//	AWS4-HMAC-SHA256 Credential=<akid>/<date>/<region>/<service>/aws4_request, SignedHeaders=h1;h2;..., Signature=<hex>
func parseAuthorizationHeader(header string) (cred credential, signedHeaders []string, signature string, err error) {
	fields := strings.SplitN(header, " ", 2)
	if len(fields) != 2 {
		return cred, nil, "", apperr.InvalidAuthHeader("malformed Authorization header")
	}
	if fields[0] != algorithm {
		return cred, nil, "", apperr.UnsupportedAlgorithm(fields[0])
	}

	var credentialValue, signedHeadersValue, signatureValue string
	for _, part := range strings.Split(fields[1], ",") {
		part = strings.TrimSpace(part)
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return cred, nil, "", apperr.InvalidAuthHeader("malformed Authorization header component")
		}
		switch kv[0] {
		case "Credential":
			credentialValue = kv[1]
		case "SignedHeaders":
			signedHeadersValue = kv[1]
		case "Signature":
			signatureValue = kv[1]
		}
	}
	if credentialValue == "" || signedHeadersValue == "" || signatureValue == "" {
		return cred, nil, "", apperr.InvalidAuthHeader("Authorization header missing required component")
	}

	credParts := strings.Split(credentialValue, "/")
	if len(credParts) != 5 {
		return cred, nil, "", apperr.InvalidCredential("Credential must have five slash-separated segments")
	}
	if credParts[4] != "aws4_request" {
		return cred, nil, "", apperr.InvalidCredential("Credential scope terminator must be aws4_request")
	}

	cred = credential{
		AccessKeyID: credParts[0],
		Date:        credParts[1],
		Region:      credParts[2],
		Service:     credParts[3],
	}
	return cred, strings.Split(signedHeadersValue, ";"), signatureValue, nil
}

func splitCredentialScope(cred credential) (date, region, service string, err error) {
	if cred.Date == "" || cred.Region == "" || cred.Service == "" {
		return "", "", "", apperr.InvalidCredential("incomplete credential scope")
	}
	return cred.Date, cred.Region, cred.Service, nil
}

// buildCanonicalHeaders renders exactly the signed headers, in the order
// the caller listed them, as "name:trimmed-value\n" lines, and the
// semicolon-joined SignedHeaders line (spec.md §4.J step 4).
func buildCanonicalHeaders(headers http.Header, signedHeaderNames []string) (canonical, signedHeadersLine string, err error) {
	var b strings.Builder
	for _, name := range signedHeaderNames {
		value := headerValue(headers, name)
		if value == "" && !hasHeader(headers, name) {
			return "", "", apperr.MissingHeader(name)
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(value))
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(signedHeaderNames, ";"), nil
}

func headerValue(headers http.Header, name string) string {
	if headers == nil {
		return ""
	}
	return headers.Get(name)
}

func hasHeader(headers http.Header, name string) bool {
	if headers == nil {
		return false
	}
	_, ok := headers[http.CanonicalHeaderKey(name)]
	return ok
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// deriveSigningKey implements spec.md §4.J step 7's chained HMAC derivation.
func deriveSigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), date)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

// SortedQueryString renders query parameters as "k=v" pairs joined by "&",
// sorted by key and then by value, for callers building Request.RawQuery
// from a net/url.Values. Keys and values are written as given, without
// percent-encoding. Exposed as a helper since the wire layer, not this
// package, owns URI/query parsing.
func SortedQueryString(values map[string][]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
