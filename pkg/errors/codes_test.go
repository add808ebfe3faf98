package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeRunNotFound, http.StatusNotFound},
		{errors.ErrCodeDatasetMissing, http.StatusBadRequest},
		{errors.ErrCodeCoverageDegenerate, http.StatusUnprocessableEntity},
		{errors.ErrCodeZeroVariance, http.StatusUnprocessableEntity},
		{errors.ErrCodeEvaluationFailed, http.StatusInternalServerError},
		{errors.ErrCodeRunAlreadyExists, http.StatusConflict},
		{errors.ErrorCode("UNMAPPED_999"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errors.HTTPStatusForCode(tc.code), string(tc.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "discovery run not found", errors.DefaultMessageForCode(errors.ErrCodeRunNotFound))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode(errors.ErrorCode("NOPE_000")))
}

func TestClientServerErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.ErrCodeDatasetInvalid))
	assert.False(t, errors.IsServerError(errors.ErrCodeDatasetInvalid))
	assert.True(t, errors.IsServerError(errors.ErrCodeEvaluationFailed))
	assert.False(t, errors.IsClientError(errors.ErrCodeEvaluationFailed))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NET", errors.ModuleForCode(errors.ErrCodeZeroVariance))
	assert.Equal(t, "ENG", errors.ModuleForCode(errors.ErrCodeRunAborted))
	assert.Equal(t, "RUN", errors.ModuleForCode(errors.ErrCodeRunNotFound))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(errors.ErrorCode("")))
}

//Personal.AI order the ending
