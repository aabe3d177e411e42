package facultyapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facultytools/vitae/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Service {
	cfg := config.DefaultService()
	cfg.BaseURL = baseURL
	cfg.Token = "test-token"
	cfg.RetryAttempts = 3
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = 5 * time.Second
	return &cfg
}

func TestFetchRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/records", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "Publications", r.URL.Query().Get("section_id"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		// data_details arrives as an object from newer service versions and
		// as a pre-serialized string from older ones.
		_, _ = w.Write([]byte(`{"records": [
			{"user_id": "u1", "data_section_id": "Publications", "data_details": {"title": "A"}},
			{"user_id": "u1", "data_section_id": "Publications", "data_details": "{\"title\": \"B\"}"}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	records, err := client.FetchRecords(context.Background(), "u1", "Publications")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"title": "A"}`, records[0].DataDetails)
	assert.JSONEq(t, `{"title": "B"}`, records[1].DataDetails)
}

func TestFetchRecordsClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FetchRecords(context.Background(), "missing", "Publications")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestFetchRecordsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records": []}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	records, err := client.FetchRecords(context.Background(), "u1", "Publications")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchDeclarations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/declarations", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "2024", r.URL.Query().Get("year"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records": [{"user_id": "u1", "data_section_id": "Declarations", "data_details": {"year": "2024", "coi": "YES"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	records, err := client.FetchDeclarations(context.Background(), "u1", 2024)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].UserID)
}

func TestListUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "Medicine", r.URL.Query().Get("department"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users": [{"id": "u1"}, {"id": "u2"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	users, err := client.ListUsers(context.Background(), "Medicine")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultService()
	_, err := NewClient(context.Background(), &cfg)
	require.Error(t, err)
}
