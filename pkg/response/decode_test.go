package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexivo/pkg/apperr"
)

type optionalBody struct {
	Count *int   `json:"count" validate:"omitempty,gte=1"`
	Name  string `json:"name" validate:"max=5"`
}

func request(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeOptional(t *testing.T) {
	var dst optionalBody
	require.NoError(t, DecodeOptional(request(""), &dst))
	assert.Nil(t, dst.Count)

	require.NoError(t, DecodeOptional(request(`{"count":2}`), &dst))
	assert.Equal(t, 2, *dst.Count)

	err := DecodeOptional(request(`{"count":`), &optionalBody{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = DecodeOptional(request(`{"name":"too long"}`), &optionalBody{})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "name must be at most 5 characters")
}

func TestDecode_EmptyBodyIsInvalid(t *testing.T) {
	err := Decode(request(""), &optionalBody{})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "Invalid request body")
}
