package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithflow/arithflow/internal/broker"
	"github.com/arithflow/arithflow/internal/coordinator"
	"github.com/arithflow/arithflow/internal/httpapi"
)

func newServer() *httpapi.Server {
	b, rb := broker.NewMemory()
	coord := coordinator.New(b, rb)
	return &httpapi.Server{Coordinator: coord, Deadline: 2 * time.Second}
}

func doGet(t *testing.T, srv *httpapi.Server, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/calculate?"+query, nil)
	rec := httptest.NewRecorder()
	srv.NewRouter().ServeHTTP(rec, req)
	return rec
}

func TestCalculateSuccess(t *testing.T) {
	srv := newServer()
	rec := doGet(t, srv, "expression=5%2B3") // '+' percent-encoded
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Result   float64 `json:"result"`
		Workflow string  `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 8.0, body.Result)
	assert.NotEmpty(t, body.Workflow)
}

func TestCalculateMissingExpressionIs422(t *testing.T) {
	srv := newServer()
	rec := doGet(t, srv, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCalculateSyntaxEmptyIs400(t *testing.T) {
	srv := newServer()
	rec := doGet(t, srv, "expression=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateUnsupportedOperatorIs400(t *testing.T) {
	srv := newServer()
	rec := doGet(t, srv, "expression=5%252+2") // '%' percent-encoded
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateDivideByZeroIs400(t *testing.T) {
	srv := newServer()
	rec := doGet(t, srv, "expression=10/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "divide")
}
