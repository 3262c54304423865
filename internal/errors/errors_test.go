package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code     Code
		expected int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeForbidden, http.StatusForbidden},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := NotFoundf("tournament %q not found", "t1")
	wrapped := fmt.Errorf("get tournament: %w", err)

	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrConflict))
	assert.Equal(t, `tournament "t1" not found`, err.Error())
}

func TestFormattedConstructorsKeepPercentWithoutArgs(t *testing.T) {
	assert.Equal(t, "score 100% of games", Validationf("score 100% of games").Message)
	assert.Equal(t, "rank 3 taken", Conflictf("rank %d taken", 3).Message)
}

func TestError_WithCause(t *testing.T) {
	base := Unavailable("search index")
	err := base.WithCause(io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, Is(err, ErrUnavailable))
	assert.Equal(t, "search index: unexpected EOF", err.Error())
	assert.Equal(t, "search index", base.Error())
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("validation failed")
	detailed := base.WithDetails(map[string]string{"email": "required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"email": "required"}, detailed.Details)
	assert.Equal(t, http.StatusBadRequest, detailed.HTTPStatus())
}
