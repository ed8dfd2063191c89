package validators

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type rawIDBody struct {
	ID any `json:"id"`
}

func jsonRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyValidatesFields(t *testing.T) {
	var body loginBody
	err := DecodeJSONBody(jsonRequest(`{"email":"nope","password":""}`), &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "is required", details["password"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var body loginBody
	err := DecodeJSONBody(jsonRequest(`{"email":"a@b.co","password":"x","extra":1}`), &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var lenient loginBody
	require.NoError(t, DecodeLenientJSONBody(jsonRequest(`{"email":"a@b.co","password":"x","extra":1}`), &lenient))
	assert.Equal(t, "a@b.co", lenient.Email)
}

func TestDecodeKeepsNumericIDsAsNumbers(t *testing.T) {
	var body rawIDBody
	require.NoError(t, DecodeJSONBody(jsonRequest(`{"id":3}`), &body))
	assert.Equal(t, json.Number("3"), body.ID)
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&unreadOnly=true&status=+pending+", nil)

	limit, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	unread, err := ParseQueryBool(req, "unreadOnly")
	require.NoError(t, err)
	assert.True(t, unread)

	assert.Equal(t, "pending", QueryString(req, "status"))
	assert.Nil(t, QueryID(req, "userId"))

	bad := httptest.NewRequest(http.MethodGet, "/?limit=500&unreadOnly=maybe", nil)
	_, err = ParseQueryInt(bad, "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryBool(bad, "unreadOnly")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsTrailingAndEmptyBodies(t *testing.T) {
	var body loginBody
	err := DecodeJSONBody(jsonRequest(`{"email":"a@b.co","password":"x"} {"email":"c@d.co"}`), &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = DecodeJSONBody(jsonRequest(``), &body)
	require.Error(t, err)
	assert.Equal(t, "request body required", pkgerrors.As(err).Message())
}
