package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		assert.Equal(t, "hypertrophy training", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))

		json.NewEncoder(w).Encode(serpResponse{OrganicResults: []Result{
			{Title: "Hypertrophy Guide", Link: "https://example.com/1", Snippet: "sets and reps"},
			{Title: "Volume Landmarks", Link: "https://example.com/2", Snippet: "MEV and MRV"},
		}})
	}))
	defer srv.Close()

	c := NewClient("secret")
	c.endpoint = srv.URL

	results, err := c.Search(context.Background(), "hypertrophy training")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Hypertrophy Guide", results[0].Title)
}

func TestSearchCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]Result, 10)
		for i := range results {
			results[i] = Result{Title: "r"}
		}
		json.NewEncoder(w).Encode(serpResponse{OrganicResults: results})
	}))
	defer srv.Close()

	c := NewClient("k")
	c.endpoint = srv.URL

	results, err := c.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, results, maxResults)
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad")
	c.endpoint = srv.URL

	_, err := c.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
