// Package apperr defines the typed error taxonomy shared by the S3 and
// DynamoDB operation layers. It is grounded on the teacher's pkg/errors
// AppError: a single struct with a wire code, an HTTP status, and an
// optional cause, plus constructor functions per well-known error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the wire-facing error code (S3 XML <Code> or DynamoDB exception name).
type Code string

const (
	// S3 codes (spec.md §7).
	CodeNoSuchBucket          Code = "NoSuchBucket"
	CodeNoSuchKey             Code = "NoSuchKey"
	CodeNoSuchVersion         Code = "NoSuchVersion"
	CodeNoSuchUpload          Code = "NoSuchUpload"
	CodeBucketAlreadyExists   Code = "BucketAlreadyExists"
	CodeBucketAlreadyOwnedByYou Code = "BucketAlreadyOwnedByYou"
	CodeBucketNotEmpty        Code = "BucketNotEmpty"
	CodeInvalidBucketName     Code = "InvalidBucketName"
	CodeInvalidArgument       Code = "InvalidArgument"
	CodeInvalidRange          Code = "InvalidRange"
	CodeMalformedXML          Code = "MalformedXML"
	CodePreconditionFailed    Code = "PreconditionFailed"
	CodeNotModified           Code = "NotModified"
	CodeMethodNotAllowed      Code = "MethodNotAllowed"
	CodeEntityTooSmall        Code = "EntityTooSmall"
	CodeEntityTooLarge        Code = "EntityTooLarge"
	CodeInvalidPart           Code = "InvalidPart"
	CodeInvalidPartOrder      Code = "InvalidPartOrder"
	CodeInvalidDigest         Code = "InvalidDigest"
	CodeBadDigest             Code = "BadDigest"
	CodeMissingContentLength  Code = "MissingContentLength"
	CodeKeyTooLongError       Code = "KeyTooLongError"
	CodeAccessDenied          Code = "AccessDenied"
	CodeNotImplemented        Code = "NotImplemented"
	CodeInternalError         Code = "InternalError"

	CodeNoSuchCORSConfiguration                      Code = "NoSuchCORSConfiguration"
	CodeNoSuchLifecycleConfiguration                 Code = "NoSuchLifecycleConfiguration"
	CodeNoSuchBucketPolicy                           Code = "NoSuchBucketPolicy"
	CodeNoSuchTagSet                                 Code = "NoSuchTagSet"
	CodeNoSuchWebsiteConfiguration                   Code = "NoSuchWebsiteConfiguration"
	CodeNoSuchPublicAccessBlockConfiguration         Code = "NoSuchPublicAccessBlockConfiguration"
	CodeServerSideEncryptionConfigurationNotFoundError Code = "ServerSideEncryptionConfigurationNotFoundError"
	CodeOwnershipControlsNotFoundError                Code = "OwnershipControlsNotFoundError"
	CodeNoSuchObjectLockConfiguration                 Code = "NoSuchObjectLockConfiguration"
	CodeNoSuchAnalyticsConfiguration                  Code = "NoSuchAnalyticsConfiguration"
	CodeNoSuchMetricsConfiguration                    Code = "NoSuchMetricsConfiguration"
	CodeNoSuchInventoryConfiguration                  Code = "NoSuchConfiguration"
	CodeNoSuchIntelligentTieringConfiguration         Code = "NoSuchConfiguration"

	// SigV4 codes (spec.md §4.J).
	CodeMissingAuthHeader      Code = "MissingAuthHeader"
	CodeInvalidAuthHeader      Code = "InvalidAuthHeader"
	CodeInvalidCredential      Code = "InvalidCredential"
	CodeUnsupportedAlgorithm   Code = "UnsupportedAlgorithm"
	CodeAccessKeyNotFound      Code = "AccessKeyNotFound"
	CodeMissingHeader          Code = "MissingHeader"
	CodeSignatureDoesNotMatch  Code = "SignatureDoesNotMatch"

	// DynamoDB codes (spec.md §7, §5.G'/§5.K).
	CodeMissingKeyAttribute            Code = "MissingKeyAttribute"
	CodeInvalidKeyType                 Code = "InvalidKeyType"
	CodeConditionalCheckFailed         Code = "ConditionalCheckFailedException"
	CodeResourceNotFound               Code = "ResourceNotFoundException"
	CodeResourceInUse                  Code = "ResourceInUseException"
	CodeValidationException            Code = "ValidationException"

	// Expression compiler codes (spec.md §4.H).
	CodeUnexpectedToken Code = "UnexpectedToken"
	CodeUnexpectedEOF   Code = "UnexpectedEof"
	CodeUnresolvedName  Code = "UnresolvedName"
	CodeUnresolvedValue Code = "UnresolvedValue"
	CodeInvalidOperand  Code = "InvalidOperand"
	CodeTypeMismatch    Code = "TypeMismatch"
)

// Error is the typed application error every operation returns on failure.
type Error struct {
	Code       Code
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause attaches an underlying error and returns the receiver for chaining.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// New builds an Error with the given code, HTTP status, and message.
func New(code Code, status int, message string) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: status}
}

// Newf is New with a formatted message.
func Newf(code Code, status int, format string, args ...interface{}) *Error {
	return New(code, status, fmt.Sprintf(format, args...))
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As extracts the *Error from err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Constructors for the S3 taxonomy (spec.md §7).

func NoSuchBucket(name string) *Error {
	return New(CodeNoSuchBucket, http.StatusNotFound, fmt.Sprintf("The specified bucket does not exist: %s", name))
}

func NoSuchKey(key string) *Error {
	return New(CodeNoSuchKey, http.StatusNotFound, fmt.Sprintf("The specified key does not exist: %s", key))
}

func NoSuchVersion(key, versionID string) *Error {
	return New(CodeNoSuchVersion, http.StatusNotFound, fmt.Sprintf("The specified version does not exist: %s %s", key, versionID))
}

func NoSuchUpload(uploadID string) *Error {
	return New(CodeNoSuchUpload, http.StatusNotFound, fmt.Sprintf("The specified upload does not exist: %s", uploadID))
}

func BucketAlreadyExists(name string) *Error {
	return New(CodeBucketAlreadyExists, http.StatusConflict, fmt.Sprintf("The requested bucket name is not available: %s", name))
}

func BucketAlreadyOwnedByYou(name string) *Error {
	return New(CodeBucketAlreadyOwnedByYou, http.StatusConflict, fmt.Sprintf("Your previous request to create the named bucket succeeded and you already own it: %s", name))
}

func BucketNotEmpty(name string) *Error {
	return New(CodeBucketNotEmpty, http.StatusConflict, fmt.Sprintf("The bucket you tried to delete is not empty: %s", name))
}

func InvalidBucketName(name string) *Error {
	return New(CodeInvalidBucketName, http.StatusBadRequest, fmt.Sprintf("The specified bucket is not valid: %s", name))
}

func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, http.StatusBadRequest, message)
}

func InvalidRange() *Error {
	return New(CodeInvalidRange, http.StatusRequestedRangeNotSatisfiable, "The requested range cannot be satisfied")
}

func MalformedXML(message string) *Error {
	return New(CodeMalformedXML, http.StatusBadRequest, message)
}

func PreconditionFailed() *Error {
	return New(CodePreconditionFailed, http.StatusPreconditionFailed, "At least one of the pre-conditions you specified did not hold")
}

func NotModified() *Error {
	return New(CodeNotModified, http.StatusNotModified, "Not Modified")
}

func MethodNotAllowed(message string) *Error {
	return New(CodeMethodNotAllowed, http.StatusMethodNotAllowed, message)
}

func EntityTooSmall() *Error {
	return New(CodeEntityTooSmall, http.StatusBadRequest, "Your proposed upload is smaller than the minimum allowed size")
}

func EntityTooLarge() *Error {
	return New(CodeEntityTooLarge, http.StatusBadRequest, "Your proposed upload exceeds the maximum allowed size")
}

func InvalidPart() *Error {
	return New(CodeInvalidPart, http.StatusBadRequest, "One or more of the specified parts could not be found")
}

func InvalidPartOrder() *Error {
	return New(CodeInvalidPartOrder, http.StatusBadRequest, "The list of parts was not in ascending order")
}

func InvalidDigest(message string) *Error {
	return New(CodeInvalidDigest, http.StatusBadRequest, message)
}

func BadDigest() *Error {
	return New(CodeBadDigest, http.StatusBadRequest, "The Content-MD5 you specified did not match what we received")
}

func MissingContentLength() *Error {
	return New(CodeMissingContentLength, http.StatusLengthRequired, "You must provide the Content-Length HTTP header")
}

func KeyTooLong() *Error {
	return New(CodeKeyTooLongError, http.StatusBadRequest, "Your key is too long")
}

func AccessDenied(message string) *Error {
	if message == "" {
		message = "Access Denied"
	}
	return New(CodeAccessDenied, http.StatusForbidden, message)
}

func NotImplemented(message string) *Error {
	return New(CodeNotImplemented, http.StatusNotImplemented, message)
}

func Internal(message string) *Error {
	return New(CodeInternalError, http.StatusInternalServerError, message)
}

func NoSuchConfiguration(code Code, message string) *Error {
	return New(code, http.StatusNotFound, message)
}

// Constructors for SigV4 (spec.md §4.J).

func MissingAuthHeader() *Error {
	return New(CodeMissingAuthHeader, http.StatusForbidden, "Authorization header is missing")
}

func InvalidAuthHeader(message string) *Error {
	return New(CodeInvalidAuthHeader, http.StatusBadRequest, message)
}

func InvalidCredential(message string) *Error {
	return New(CodeInvalidCredential, http.StatusBadRequest, message)
}

func UnsupportedAlgorithm(alg string) *Error {
	return New(CodeUnsupportedAlgorithm, http.StatusBadRequest, fmt.Sprintf("unsupported signing algorithm: %s", alg))
}

func AccessKeyNotFound(id string) *Error {
	return New(CodeAccessKeyNotFound, http.StatusForbidden, fmt.Sprintf("The AWS Access Key Id does not exist: %s", id))
}

func MissingHeader(name string) *Error {
	return New(CodeMissingHeader, http.StatusBadRequest, fmt.Sprintf("signed header missing from request: %s", name))
}

func SignatureDoesNotMatch() *Error {
	return New(CodeSignatureDoesNotMatch, http.StatusForbidden, "The request signature we calculated does not match the signature you provided")
}

// Constructors for DynamoDB (spec.md §7, §5.G'/§5.K).

func MissingKeyAttribute(name string) *Error {
	return New(CodeMissingKeyAttribute, http.StatusBadRequest, fmt.Sprintf("missing key attribute: %s", name))
}

func InvalidKeyType(name string) *Error {
	return New(CodeInvalidKeyType, http.StatusBadRequest, fmt.Sprintf("invalid type for key attribute: %s", name))
}

func ConditionalCheckFailed() *Error {
	return New(CodeConditionalCheckFailed, http.StatusBadRequest, "The conditional request failed")
}

func ResourceNotFound(message string) *Error {
	return New(CodeResourceNotFound, http.StatusBadRequest, message)
}

func ResourceInUse(message string) *Error {
	return New(CodeResourceInUse, http.StatusBadRequest, message)
}

func Validation(message string) *Error {
	return New(CodeValidationException, http.StatusBadRequest, message)
}

// Constructors for the expression compiler (spec.md §4.H).

func UnexpectedToken(expected, found string) *Error {
	return New(CodeUnexpectedToken, http.StatusBadRequest, fmt.Sprintf("expected %s, found %s", expected, found))
}

func UnexpectedEOF() *Error {
	return New(CodeUnexpectedEOF, http.StatusBadRequest, "unexpected end of expression")
}

func UnresolvedName(name string) *Error {
	return New(CodeUnresolvedName, http.StatusBadRequest, fmt.Sprintf("unresolved attribute name placeholder: %s", name))
}

func UnresolvedValue(name string) *Error {
	return New(CodeUnresolvedValue, http.StatusBadRequest, fmt.Sprintf("unresolved attribute value placeholder: %s", name))
}

func InvalidOperand(message string) *Error {
	return New(CodeInvalidOperand, http.StatusBadRequest, message)
}

func TypeMismatch(message string) *Error {
	return New(CodeTypeMismatch, http.StatusBadRequest, message)
}
