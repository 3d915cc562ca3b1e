package lib

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const movieDetailFixture = `{
	"id": 693134,
	"title": "Dune: Part Two",
	"overview": "Follow the mythic journey of Paul Atreides.",
	"poster_path": "/poster.jpg",
	"backdrop_path": "/backdrop.jpg",
	"release_date": "2024-02-27",
	"vote_average": 8.2,
	"runtime": 167,
	"genres": [{"id": 878, "name": "Science Fiction"}, {"id": 12, "name": "Adventure"}]
}`

const movieCreditsFixture = `{
	"cast": [
		{"name": "Timothee Chalamet", "character": "Paul Atreides", "profile_path": "/tc.jpg"},
		{"name": "Zendaya", "character": "Chani", "profile_path": "/z.jpg"}
	]
}`

const movieVideosFixture = `{
	"results": [
		{"site": "YouTube", "type": "Trailer", "key": "Way9Dexny3w", "name": "Official Trailer", "official": true, "published_at": "2023-05-03T16:00:21.000Z"},
		{"site": "YouTube", "type": "Featurette", "key": "ignored", "name": "Behind the scenes", "official": true, "published_at": "2023-05-03T16:00:21.000Z"},
		{"site": "Vimeo", "type": "Trailer", "key": "ignored2", "name": "Mirror", "official": false, "published_at": "2023-05-03T16:00:21.000Z"}
	]
}`

func newCatalogTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/693134", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, movieDetailFixture)
	})
	mux.HandleFunc("/movie/693134/credits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, movieCreditsFixture)
	})
	mux.HandleFunc("/movie/693134/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, movieVideosFixture)
	})
	mux.HandleFunc("/movie/now_playing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"id": 693134}, {"id": 100001}]}`)
	})
	return httptest.NewServer(mux)
}

func TestTMDBFetchMovie(t *testing.T) {
	server := newCatalogTestServer(t)
	defer server.Close()
	NewTMDBBaseURL(server.URL)
	NewTMDBHTTPClient(server.Client())

	movie, err := TMDBFetchMovie("693134")
	assert.Nil(t, err)
	if !assert.NotNil(t, movie) {
		return
	}
	assert.Equal(t, "693134", movie.ID)
	assert.Equal(t, "Dune: Part Two", movie.Title)
	assert.Equal(t, uint(167), movie.Runtime)
	assert.Equal(t, float32(8.2), movie.VoteAverage)
	assert.Len(t, movie.Genres, 2)
	assert.Len(t, movie.Casts, 2)

	// Only YouTube trailers survive the filter, with derived links.
	if assert.Len(t, movie.Trailers, 1) {
		trailer := movie.Trailers[0].(map[string]any)
		assert.Equal(t, "https://www.youtube.com/watch?v=Way9Dexny3w", trailer["url"])
		assert.Equal(t, "https://img.youtube.com/vi/Way9Dexny3w/0.jpg", trailer["thumbnail"])
	}
}

func TestTMDBFetchMovieNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	NewTMDBBaseURL(server.URL)
	NewTMDBHTTPClient(server.Client())

	_, err := TMDBFetchMovie("0")
	assert.NotNil(t, err)
}

func TestTMDBNowPlayingIDs(t *testing.T) {
	server := newCatalogTestServer(t)
	defer server.Close()
	NewTMDBBaseURL(server.URL)
	NewTMDBHTTPClient(server.Client())

	ids, err := TMDBNowPlayingIDs()
	assert.Nil(t, err)
	assert.Equal(t, []string{"693134", "100001"}, ids)
}
