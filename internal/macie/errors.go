package macie

import (
	"errors"

	"github.com/aws/smithy-go"
)

// ErrorCode returns the API error code carried by err, or "".
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsConflict reports whether the remote call failed because the resource
// already exists or is in a conflicting state.
func IsConflict(err error) bool {
	switch ErrorCode(err) {
	case "ConflictException", "ResourceConflictException":
		return true
	}
	return false
}

// IsAccessDenied reports whether the caller lacks permission.
func IsAccessDenied(err error) bool {
	switch ErrorCode(err) {
	case "AccessDeniedException", "AccessDenied", "UnauthorizedOperation":
		return true
	}
	return false
}

// IsThrottled reports whether the call was rejected by rate limiting or
// service quotas.
func IsThrottled(err error) bool {
	switch ErrorCode(err) {
	case "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded", "ServiceQuotaExceededException":
		return true
	}
	return false
}
