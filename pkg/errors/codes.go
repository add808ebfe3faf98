package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Aliases kept short for call-site readability.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")

	CodeRunNotFound        = ErrCodeRunNotFound
	CodeDatasetMissing     = ErrCodeDatasetMissing
	CodeCoverageDegenerate = ErrCodeCoverageDegenerate
	CodeZeroVariance       = ErrCodeZeroVariance
)

// Dataset Error Codes.  Raised at the input boundary before an engine run
// starts; a run is never launched over a partially validated dataset.
const (
	ErrCodeDatasetMissing     ErrorCode = "DAT_001"
	ErrCodeDatasetInvalid     ErrorCode = "DAT_002"
	ErrCodeDrugUnknown        ErrorCode = "DAT_003"
	ErrCodeMatrixInconsistent ErrorCode = "DAT_004"
	ErrCodeRankMissing        ErrorCode = "DAT_005"
)

// Network / coverage-scorer Error Codes.
const (
	ErrCodeCoverageDegenerate ErrorCode = "NET_001"
	ErrCodeZeroVariance       ErrorCode = "NET_002"
	ErrCodeNodeNotFound       ErrorCode = "NET_003"
	ErrCodeGraphEmpty         ErrorCode = "NET_004"
	ErrCodeBinningFailed      ErrorCode = "NET_005"
)

// Evolutionary-engine Error Codes.
const (
	ErrCodeEvaluationFailed ErrorCode = "ENG_001"
	ErrCodeSelectionFailed  ErrorCode = "ENG_002"
	ErrCodeRunAborted       ErrorCode = "ENG_003"
	ErrCodeConfigInvalid    ErrorCode = "ENG_004"
)

// Discovery-run Error Codes (application layer and run store).
const (
	ErrCodeRunNotFound      ErrorCode = "RUN_001"
	ErrCodeRunAlreadyExists ErrorCode = "RUN_002"
	ErrCodeRunStateInvalid  ErrorCode = "RUN_003"
	ErrCodeArtifactFailed   ErrorCode = "RUN_004"
	ErrCodeRunEnqueueFailed ErrorCode = "RUN_005"
)

// Infrastructure aliases (mapped from old names).
const (
	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDatabaseError     = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeInternal
	CodeStorageError      = ErrCodeInternal
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDatasetMissing:     http.StatusBadRequest,
	ErrCodeDatasetInvalid:     http.StatusBadRequest,
	ErrCodeDrugUnknown:        http.StatusBadRequest,
	ErrCodeMatrixInconsistent: http.StatusBadRequest,
	ErrCodeRankMissing:        http.StatusBadRequest,

	ErrCodeCoverageDegenerate: http.StatusUnprocessableEntity,
	ErrCodeZeroVariance:       http.StatusUnprocessableEntity,
	ErrCodeNodeNotFound:       http.StatusBadRequest,
	ErrCodeGraphEmpty:         http.StatusBadRequest,
	ErrCodeBinningFailed:      http.StatusInternalServerError,

	ErrCodeEvaluationFailed: http.StatusInternalServerError,
	ErrCodeSelectionFailed:  http.StatusInternalServerError,
	ErrCodeRunAborted:       http.StatusInternalServerError,
	ErrCodeConfigInvalid:    http.StatusBadRequest,

	ErrCodeRunNotFound:      http.StatusNotFound,
	ErrCodeRunAlreadyExists: http.StatusConflict,
	ErrCodeRunStateInvalid:  http.StatusConflict,
	ErrCodeArtifactFailed:   http.StatusInternalServerError,
	ErrCodeRunEnqueueFailed: http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDatasetMissing:     "required dataset is missing",
	ErrCodeDatasetInvalid:     "dataset is malformed",
	ErrCodeDrugUnknown:        "drug name not present in distance matrices",
	ErrCodeMatrixInconsistent: "distance matrices disagree on the drug index",
	ErrCodeRankMissing:        "graph rank missing for network node",

	ErrCodeCoverageDegenerate: "candidate targets do not intersect the interaction network",
	ErrCodeZeroVariance:       "permutation test produced zero variance",
	ErrCodeNodeNotFound:       "node not present in the interaction network",
	ErrCodeGraphEmpty:         "interaction network has no nodes",
	ErrCodeBinningFailed:      "degree binning failed",

	ErrCodeEvaluationFailed: "fitness evaluation failed",
	ErrCodeSelectionFailed:  "multi-objective selection failed",
	ErrCodeRunAborted:       "discovery run aborted",
	ErrCodeConfigInvalid:    "invalid engine configuration",

	ErrCodeRunNotFound:      "discovery run not found",
	ErrCodeRunAlreadyExists: "discovery run already exists",
	ErrCodeRunStateInvalid:  "discovery run is in an invalid state for this operation",
	ErrCodeArtifactFailed:   "failed to store result artifact",
	ErrCodeRunEnqueueFailed: "failed to enqueue discovery run",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
