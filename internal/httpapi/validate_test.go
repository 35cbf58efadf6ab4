package httpapi

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/planer/internal/apperr"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeAndValidateSuccess(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com"}`))
	var dst sampleRequest
	err := decodeAndValidate(req, &dst)
	require.NoError(t, err)
	assert.Equal(t, "Ada", dst.Name)
}

func TestDecodeAndValidateEmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(``))
	var dst sampleRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, apperr.KindBadRequest, appErr.Kind)
	assert.Equal(t, "request body is required", appErr.Message)
}

func TestDecodeAndValidateMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{not json`))
	var dst sampleRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.As(err).Kind)
}

func TestDecodeAndValidateMissingRequiredField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"email":"ada@example.com"}`))
	var dst sampleRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Message, "Name")
}

func TestDecodeAndValidateInvalidEmail(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"name":"Ada","email":"not-an-email"}`))
	var dst sampleRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Message, "Email")
}

func TestDecodeAndValidateOverlongField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"name":"way-too-long-for-the-limit"}`))
	var dst sampleRequest
	err := decodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Message, "max")
}
