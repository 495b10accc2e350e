package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/synthetizer/internal/api/handlers"
	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/constants"
)

type recordedRequest struct {
	method, route, status string
}

type fakeMetrics struct {
	mu         sync.Mutex
	requests   []recordedRequest
	registered int
}

func (m *fakeMetrics) RecordHTTPRequest(method, route, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, route, status})
}

func (m *fakeMetrics) SetSamplersRegistered(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = count
}

func newTestServer(t *testing.T, metrics Metrics) *httptest.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()

	config := sampling.DefaultConfig()
	config.Seed = 11
	selector, err := sampling.NewSelector(config, logger)
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(selector, metrics, nil, logger).SetupRoutes())
	t.Cleanup(server.Close)
	return server
}

func createSampler(t *testing.T, server *httptest.Server, body string) handlers.CreateSamplerResponse {
	t.Helper()
	resp, err := http.Post(server.URL+"/api/v1/samplers", constants.ContentTypeJSON, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created handlers.CreateSamplerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func getSample(t *testing.T, server *httptest.Server, id, query string) (int, handlers.SampleResponse, map[string]any) {
	t.Helper()
	resp, err := http.Get(server.URL + "/api/v1/samplers/" + id + "/sample" + query)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	var sample handlers.SampleResponse
	if resp.StatusCode == http.StatusOK {
		data, err := json.Marshal(raw)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &sample))
	}
	return resp.StatusCode, sample, raw
}

func TestCreateAndSampleCategorical(t *testing.T) {
	server := newTestServer(t, nil)

	created := createSampler(t, server, `{"path": "gender", "values": ["male", "female", "female"]}`)
	assert.Equal(t, sampling.KindCategorical, created.Kind)
	assert.Equal(t, 3, created.Observed)
	assert.NotEmpty(t, created.ID)

	status, sample, _ := getSample(t, server, created.ID, "?count=20")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, sample.Values, 20)
	for _, v := range sample.Values {
		assert.Contains(t, []any{"male", "female"}, v)
	}
}

func TestCreateFromDocument(t *testing.T) {
	server := newTestServer(t, nil)

	body := `{
		"path": "entry.{}.resource.birthDate",
		"document": {"entry": [
			{"resource": {"birthDate": "1990-01-01T08:00:00"}},
			{"resource": {"birthDate": "1992-06-15T12:30:00"}}
		]}
	}`
	created := createSampler(t, server, body)
	assert.Equal(t, sampling.KindDatetime, created.Kind)
	assert.Equal(t, 2, created.Observed)
}

func TestCreateFromYAMLBody(t *testing.T) {
	server := newTestServer(t, nil)

	body := "path: age\nvalues: [30, 41, 52, 47]\nkind_hint:\n  numeric: true\n"
	created := createSampler(t, server, body)
	assert.Equal(t, sampling.KindContinuous, created.Kind)
}

func TestSampleUniqueRequiresSize(t *testing.T) {
	server := newTestServer(t, nil)
	created := createSampler(t, server, `{"values": ["a", "b", "c"], "kind_hint": {"unique": true}}`)
	assert.Equal(t, sampling.KindUniqueCategorical, created.Kind)

	status, _, raw := getSample(t, server, created.ID, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SIZE", raw["error"].(map[string]any)["code"])

	status, sample, _ := getSample(t, server, created.ID, "?size=2")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, sample.Values, 1)
	assert.Len(t, sample.Values[0], 2)

	status, _, raw = getSample(t, server, created.ID, "?size=4")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SIZE_TOO_LARGE", raw["error"].(map[string]any)["code"])
}

func TestSampleBoundedInterval(t *testing.T) {
	server := newTestServer(t, nil)
	body := `{"values": [
		{"start": "2020-01-01T00:00:00", "end": "2020-01-02T00:00:00"},
		{"start": "2020-01-01T00:00:00", "end": "9999-12-31T23:59:59"}
	], "kind_hint": {"open_intervals": true}}`
	created := createSampler(t, server, body)
	assert.Equal(t, sampling.KindBoundedInterval, created.Kind)

	status, _, _ := getSample(t, server, created.ID, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, sample, _ := getSample(t, server, created.ID, "?start=2021-01-01T00:00:00&end=2021-02-01T00:00:00&count=5")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, sample.Values, 5)
}

func TestCreateErrors(t *testing.T) {
	server := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", ``, http.StatusBadRequest, "EMPTY_INPUT"},
		{"not an object", `[1, 2]`, http.StatusBadRequest, "EMPTY_INPUT"},
		{"no values", `{"path": "x"}`, http.StatusBadRequest, "EMPTY_INPUT"},
		{"empty values", `{"values": []}`, http.StatusUnprocessableEntity, "NO_VALUES"},
		{"document without path", `{"document": {}}`, http.StatusBadRequest, "INVALID_PATH"},
		{"negative numeric", `{"values": [-1, 2], "kind_hint": {"numeric": true}}`, http.StatusBadRequest, "NEGATIVE_VALUE"},
		{"numeric support too wide", `{"values": [1, 10000000000], "kind_hint": {"numeric": true}}`, http.StatusBadRequest, "SUPPORT_TOO_LARGE"},
		{"marker end without open intervals", `{"values": [{"start": "2020-01-01T08:00:00", "end": "2020-01-01T09:00:00"}, {"start": "2020-01-01T08:00:00", "end": "9999-12-31T23:59:59"}]}`, http.StatusBadRequest, "SUPPORT_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/api/v1/samplers", constants.ContentTypeJSON, strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"].(map[string]any)["code"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestDescribeFormats(t *testing.T) {
	server := newTestServer(t, nil)
	created := createSampler(t, server, `{"path": "age", "values": [10, 20, 30, 40], "kind_hint": {"numeric": true}}`)

	resp, err := http.Get(server.URL + "/api/v1/samplers/" + created.ID + "/describe")
	require.NoError(t, err)
	var description sampling.Description
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&description))
	resp.Body.Close()
	assert.Equal(t, "age", description.Title)
	assert.Equal(t, 4, description.Count)

	resp, err = http.Get(server.URL + "/api/v1/samplers/" + created.ID + "/describe?format=table")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, constants.ContentTypePlainText, resp.Header.Get(constants.HeaderContentType))

	resp, err = http.Get(server.URL + "/api/v1/samplers/" + created.ID + "/describe?format=html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, constants.ContentTypeHTML, resp.Header.Get(constants.HeaderContentType))

	resp, err = http.Get(server.URL + "/api/v1/samplers/" + created.ID + "/describe?format=pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteAndList(t *testing.T) {
	metrics := &fakeMetrics{}
	server := newTestServer(t, metrics)

	first := createSampler(t, server, `{"values": [1, 2, 3]}`)
	createSampler(t, server, `{"values": ["x"]}`)
	assert.Equal(t, 2, metrics.registered)

	resp, err := http.Get(server.URL + "/api/v1/samplers")
	require.NoError(t, err)
	var list handlers.ListSamplersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Equal(t, 2, list.Count)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/samplers/"+first.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, metrics.registered)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SAMPLER_NOT_FOUND", body["error"].(map[string]any)["code"])

	status, _, _ := getSample(t, server, first.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsUseRouteTemplates(t *testing.T) {
	metrics := &fakeMetrics{}
	server := newTestServer(t, metrics)

	created := createSampler(t, server, `{"values": [1, 2, 3]}`)
	status, _, _ := getSample(t, server, created.ID, "?count=2")
	require.Equal(t, http.StatusOK, status)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Contains(t, metrics.requests, recordedRequest{http.MethodPost, "/api/v1/samplers", "201"})
	assert.Contains(t, metrics.requests, recordedRequest{http.MethodGet, "/api/v1/samplers/{id}/sample", "200"})
}

func TestHealthAndRequestID(t *testing.T) {
	server := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(constants.HeaderRequestID, "req-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(constants.HeaderRequestID))

	var health handlers.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, constants.AppVersion, health.Version)
}
