package nlsql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAskReturnsValidatedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "total spend by vendor", req["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "total spend by vendor",
			"generated_sql": "SELECT v.name, SUM(i.total_amount) FROM invoices i JOIN vendors v ON v.id = i.vendor_id GROUP BY v.name",
			"results": [{"name": "Acme", "sum": 119.0}],
			"row_count": 1
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, discardLogger())
	answer, err := client.Ask(context.Background(), "total spend by vendor")
	require.NoError(t, err)

	assert.Equal(t, "total spend by vendor", answer.Query)
	assert.Contains(t, answer.GeneratedSQL, "SUM(i.total_amount)")
	require.Len(t, answer.Results, 1)
	assert.Equal(t, "Acme", answer.Results[0]["name"])
	assert.Equal(t, 1, answer.RowCount)
}

func TestAskRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, discardLogger())
	_, err := client.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-2xx status: 502")
}

func TestAskRejectsMalformedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// row_count missing, results not an array.
		_, _ = w.Write([]byte(`{"query": "q", "generated_sql": "SELECT 1", "results": "nope"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, discardLogger())
	_, err := client.Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestValidateAnswer(t *testing.T) {
	valid := []byte(`{"query": "q", "generated_sql": "SELECT 1", "results": [], "row_count": 0}`)
	assert.NoError(t, ValidateAnswer(valid))

	assert.Error(t, ValidateAnswer([]byte(`{}`)), "all fields are required")
	assert.Error(t, ValidateAnswer([]byte(`{"query": "q", "generated_sql": "SELECT 1", "results": [], "row_count": -1}`)))
	assert.Error(t, ValidateAnswer([]byte(`not json`)))
}
