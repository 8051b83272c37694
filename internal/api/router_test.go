package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"customer-engine/internal/api"
	"customer-engine/internal/api/handler/dto"
	"customer-engine/internal/config"
	"customer-engine/internal/domain/customer"
	"customer-engine/internal/infrastructure/database/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{}
	cfg.Metrics.Path = "/metrics"
	service := customer.NewCustomerService(memory.NewCustomerRepository(logger), nil, logger)

	server := httptest.NewServer(api.SetupRouter(ctx, service, cfg, logger))
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodGet, server.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp = do(t, http.MethodGet, server.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_CustomerRoutes(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1/customers"

	resp := do(t, http.MethodPost, base, `{"firstName":"Anna","lastName":"Zeller","age":34,"dateOfBirth":"1990-04-12","email":"anna@x.com","password":"a-sufficiently-long-pw","isProMember":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	anna := decode[dto.CustomerResponse](t, resp)
	assert.NotZero(t, anna.CustomerID)

	resp = do(t, http.MethodPost, base, `{"firstName":"Ben","lastName":"Young","age":30,"dateOfBirth":"1994-01-01","email":"ben@x.com","password":"another-long-password"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, base, `{"firstName":"Dup","lastName":"Dup","age":30,"dateOfBirth":"1994-01-01","email":"anna@x.com","password":"another-long-password"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, base, `{"firstName":"Weak","lastName":"Pw","age":30,"dateOfBirth":"1994-01-01","email":"weak@x.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/count", "")
	assert.Equal(t, int64(2), decode[dto.CountResponse](t, resp).Count)

	resp = do(t, http.MethodGet, base+"/count/pro-members", "")
	assert.Equal(t, int64(1), decode[dto.CountResponse](t, resp).Count)

	resp = do(t, http.MethodGet, base+"/search/email/anna@x.com", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, anna.CustomerID, decode[dto.CustomerResponse](t, resp).CustomerID)

	resp = do(t, http.MethodGet, base+"/search/name?firstName=Ben&lastName=Young", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.CustomerResponse](t, resp), 1)

	resp = do(t, http.MethodGet, base+"/sorted/name?byLastName=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sorted := decode[[]dto.CustomerResponse](t, resp)
	require.Len(t, sorted, 2)
	assert.Equal(t, "Young", sorted[0].LastName)

	resp = do(t, http.MethodPatch, base+"/"+itoa(anna.CustomerID), `{"lastName":"Albers","isProMember":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[dto.CustomerResponse](t, resp).IsProMember)

	resp = do(t, http.MethodGet, base+"/pro-members", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, base+"/by-email/ben@x.com", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, base+"/"+itoa(anna.CustomerID), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/"+itoa(anna.CustomerID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(bytes.TrimSpace(body)))
}

func TestRouter_UnknownRoute(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, http.MethodPut, server.URL+"/api/v1/customers/1", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
