package errors

import "net/http"

// ErrorCode is a string identifier for a specific failure condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	CodeOK             ErrorCode = "OK"
	CodeUnknown        ErrorCode = "COMMON_000"
	CodeInternal       ErrorCode = "COMMON_001"
	CodeInvalidParam   ErrorCode = "COMMON_002"
	CodeUnauthorized   ErrorCode = "COMMON_003"
	CodeForbidden      ErrorCode = "COMMON_004"
	CodeNotFound       ErrorCode = "COMMON_005"
	CodeConflict       ErrorCode = "COMMON_006"
	CodeValidation     ErrorCode = "COMMON_007"
	CodeSerialization  ErrorCode = "COMMON_008"
	CodeDatabase       ErrorCode = "COMMON_009"
	CodeCache          ErrorCode = "COMMON_010"
	CodeExternal       ErrorCode = "COMMON_011"
	CodeUnavailable    ErrorCode = "COMMON_012"
	CodeNotImplemented ErrorCode = "COMMON_013"
)

// Discovery request module error codes.
const (
	CodeRequestNotFound      ErrorCode = "REQ_001"
	CodeRequestNumberTaken   ErrorCode = "REQ_002"
	CodeRequestInvalidStatus ErrorCode = "REQ_003"
)

// Document module error codes.
const (
	CodeDocumentNotFound ErrorCode = "DOC_001"
)

// Mapping module error codes.
const (
	CodeMappingNotFound      ErrorCode = "MAP_001"
	CodeMappingAlreadyExists ErrorCode = "MAP_002"
	CodeMappingNotReviewable ErrorCode = "MAP_003"
)

// Parsing / import module error codes.
const (
	CodeParseNoRequests    ErrorCode = "PRS_001"
	CodeParseDuplicateItem ErrorCode = "PRS_002"
	CodeParseInvalidRow    ErrorCode = "PRS_003"
)

// Semantic matcher error codes.
const (
	CodeSemanticUnavailable ErrorCode = "SEM_001"
	CodeEmbeddingFailed     ErrorCode = "SEM_002"
	CodeVectorSearchFailed  ErrorCode = "SEM_003"
)

// HTTPStatus maps an ErrorCode to the HTTP status code the REST layer should
// respond with. Unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam, CodeValidation, CodeRequestInvalidStatus, CodeParseNoRequests, CodeParseInvalidRow:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeRequestNotFound, CodeDocumentNotFound, CodeMappingNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeRequestNumberTaken, CodeMappingAlreadyExists, CodeMappingNotReviewable, CodeParseDuplicateItem:
		return http.StatusConflict
	case CodeUnavailable, CodeSemanticUnavailable:
		return http.StatusServiceUnavailable
	case CodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
