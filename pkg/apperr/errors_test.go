package apperr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBusinessErrorMapsEachSentinelToItsTypedShape(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want any
	}{
		{"malformed token", ErrTokenMalformed, ValidationError{}},
		{"invalid amount", ErrInvalidAmount, ValidationError{}},
		{"token not found", ErrTokenNotFound, ValidationError{}},
		{"token used or expired", ErrTokenUsedOrExpired, EntityConflictError{}},
		{"mint exhausted", ErrMintExhausted, InternalServerError{}},
		{"risk rejected", ErrRiskRejected, ForbiddenError{}},
		{"risk challenged", ErrRiskChallenged, ForbiddenError{}},
		{"rate limited", ErrRateLimited, RateLimitedError{}},
		{"missing fields", ErrMissingFields, ValidationError{}},
		{"unexpected fields", ErrUnexpectedFields, ValidationError{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateBusinessError(tc.in, "token")
			assert.IsType(t, tc.want, got)
			assert.NotEmpty(t, got.Error())
		})
	}
}

func TestValidateBusinessErrorDefaultsUnknownErrorsToInternal(t *testing.T) {
	got := ValidateBusinessError(assertLikeError{"unmapped"}, "token")
	assert.IsType(t, InternalServerError{}, got)
}

func TestValidateInternalErrorNeverLeaksOriginalMessage(t *testing.T) {
	got := ValidateInternalError(assertLikeError{"raw database failure with a connection string"})

	assert.NotContains(t, got.Error(), "connection string")
	assert.Equal(t, "The server encountered an unexpected error. Please try again later.", got.Error())
}

func TestRiskErrorsCarryReasons(t *testing.T) {
	got := ValidateBusinessError(ErrRiskRejected, "token", []string{"high velocity", "ip mismatch"})

	forbidden, ok := got.(ForbiddenError)
	assert.True(t, ok)
	assert.Equal(t, []string{"high velocity", "ip mismatch"}, forbidden.Reasons)
}

type assertLikeError struct{ msg string }

func (e assertLikeError) Error() string { return e.msg }
