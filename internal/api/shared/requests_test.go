package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Count int `json:"count" validate:"required,gt=0"`
}

type selfValidating struct {
	err error
}

func (s selfValidating) Validate() error { return s.err }

func TestDecodeJSON(t *testing.T) {
	var req taggedRequest
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"count": 7}`))
	require.NoError(t, DecodeJSON(r, &req))
	assert.Equal(t, 7, req.Count)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"count": `))
	assert.Error(t, DecodeJSON(r, &req))

	// A type mismatch is a decode error, not a validation error.
	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"count": 2.5}`))
	assert.Error(t, DecodeJSON(r, &req))
}

func TestValidateRequestStructTags(t *testing.T) {
	assert.NoError(t, ValidateRequest(taggedRequest{Count: 3}))
	assert.Error(t, ValidateRequest(taggedRequest{Count: 0}))
	assert.Error(t, ValidateRequest(taggedRequest{Count: -1}))
}

func TestValidateRequestCustomValidator(t *testing.T) {
	assert.NoError(t, ValidateRequest(selfValidating{}))

	wantErr := errors.New("bad payload")
	assert.ErrorIs(t, ValidateRequest(selfValidating{err: wantErr}), wantErr)
}
