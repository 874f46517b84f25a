package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
)

// newTestIndex returns an index backed by a fake cluster that records the
// requests it receives.
func newTestIndex(t *testing.T, handler http.HandlerFunc) *PlaceIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewPlaceIndex(es, "places")
}

func TestPlaceIndex_Index(t *testing.T) {
	var gotPath string
	var doc map[string]any
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&doc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := x.Index(context.Background(), &entity.Place{
		ID:       "p1",
		Title:    "Empire State",
		Address:  "20 W 34th St",
		Location: entity.Coordinates{Lat: 1, Lng: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "PUT /places/_doc/p1", gotPath)
	assert.Equal(t, "Empire State", doc["title"])
	assert.Equal(t, map[string]any{"lat": 1.0, "lon": 2.0}, doc["location"])
}

func TestPlaceIndex_RemoveMissingIsFine(t *testing.T) {
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	assert.NoError(t, x.Remove(context.Background(), "p1"))
}

func TestPlaceIndex_Search(t *testing.T) {
	var query string
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		query = string(b)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p2"},{"_id":"p1"}]}}`))
	})

	ids, err := x.Search(context.Background(), "empire", 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
	assert.Contains(t, query, `"size":10`)
	assert.Contains(t, query, `"query":"empire"`)
}

func TestPlaceIndex_SearchMissingIndex(t *testing.T) {
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})

	ids, err := x.Search(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
