package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusBadGateway, "ledger down", map[string]interface{}{"record_id": "RM-1"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bad Gateway", body["title"])
	assert.Equal(t, "ledger down", body["detail"])
	assert.Equal(t, "RM-1", body["record_id"])
	assert.Equal(t, "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.3", body["type"])
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	var dest struct {
		PatientName string `json:"patientName"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patientName":"Budi"}`))
	require.NoError(t, ParseJSON(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, "Budi", dest.PatientName)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patientName":"Budi","extra":1}`))
	assert.Error(t, ParseJSON(httptest.NewRecorder(), req, &dest))
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?decrypt=true&limit=20&bad=x", nil)

	b, err := QueryBool(req, "decrypt")
	require.NoError(t, err)
	assert.True(t, b)

	n, err := QueryInt(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = QueryInt(req, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	_, err = QueryInt(req, "bad", 50)
	assert.Error(t, err)
	_, err = QueryBool(req, "bad")
	assert.Error(t, err)
}
