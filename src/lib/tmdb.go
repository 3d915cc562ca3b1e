package lib

import (
	"context"
	"ctb/src/types"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

var tmdbHTTPClient = &http.Client{Timeout: 15 * time.Second}

// NewTMDBHTTPClient replaces the catalog HTTP client (used by tests).
func NewTMDBHTTPClient(c *http.Client) {
	tmdbHTTPClient = c
}

var tmdbBase = tmdbBaseURL

func NewTMDBBaseURL(u string) {
	tmdbBase = u
}

// TMDBMovie is the normalized shape fetched from the external catalog before
// it is persisted as a Movie row.
type TMDBMovie struct {
	ID           string
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	ReleaseDate  string
	VoteAverage  float32
	Runtime      uint
	Genres       types.JSONBArray
	Casts        types.JSONBArray
	Trailers     types.JSONBArray
}

func tmdbGet(path string) (string, error) {
	url := fmt.Sprintf("%s%s", tmdbBase, path)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", os.Getenv("TMDB_API_KEY")))
	res, err := tmdbHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("catalog request [%s] failed with status %d", path, res.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("catalog request [%s] returned invalid json", path)
	}
	return string(body), nil
}

// TMDBFetchMovie retrieves detail, cast and trailer metadata for one movie.
// The three catalog calls run in parallel; any failure fails the fetch.
func TMDBFetchMovie(id string) (*TMDBMovie, error) {
	var detail, credits, videos string
	errs := make([]error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		detail, errs[0] = tmdbGet(fmt.Sprintf("/movie/%s", id))
	}()
	go func() {
		defer wg.Done()
		credits, errs[1] = tmdbGet(fmt.Sprintf("/movie/%s/credits", id))
	}()
	go func() {
		defer wg.Done()
		videos, errs[2] = tmdbGet(fmt.Sprintf("/movie/%s/videos", id))
	}()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			log.Printf("[tmdb] Error fetching movie %s: %s\n", id, err.Error())
			return nil, err
		}
	}

	movie := &TMDBMovie{
		ID:           id,
		Title:        gjson.Get(detail, "title").String(),
		Overview:     gjson.Get(detail, "overview").String(),
		PosterPath:   gjson.Get(detail, "poster_path").String(),
		BackdropPath: gjson.Get(detail, "backdrop_path").String(),
		ReleaseDate:  gjson.Get(detail, "release_date").String(),
		VoteAverage:  float32(gjson.Get(detail, "vote_average").Float()),
		Runtime:      uint(gjson.Get(detail, "runtime").Int()),
	}
	for _, g := range gjson.Get(detail, "genres").Array() {
		movie.Genres = append(movie.Genres, map[string]any{
			"id":   g.Get("id").Int(),
			"name": g.Get("name").String(),
		})
	}
	for i, c := range gjson.Get(credits, "cast").Array() {
		if i >= 12 {
			break
		}
		movie.Casts = append(movie.Casts, map[string]any{
			"name":         c.Get("name").String(),
			"character":    c.Get("character").String(),
			"profile_path": c.Get("profile_path").String(),
		})
	}
	for _, v := range gjson.Get(videos, "results").Array() {
		if v.Get("site").String() != "YouTube" || v.Get("type").String() != "Trailer" {
			continue
		}
		key := v.Get("key").String()
		movie.Trailers = append(movie.Trailers, map[string]any{
			"key":          key,
			"name":         v.Get("name").String(),
			"official":     v.Get("official").Bool(),
			"published_at": v.Get("published_at").String(),
			"url":          fmt.Sprintf("https://www.youtube.com/watch?v=%s", key),
			"thumbnail":    fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", key),
		})
	}
	return movie, nil
}

// TMDBNowPlayingIDs returns ids from the now-playing listing, cached in redis
// so the auto-generation job does not hammer the catalog.
func TMDBNowPlayingIDs() ([]string, error) {
	const cacheKey = "tmdb:now_playing"
	rd := GetRedisClient()
	if rd != nil {
		if cached, err := rd.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
			var ids []string
			for _, r := range gjson.Parse(cached).Array() {
				ids = append(ids, r.String())
			}
			return ids, nil
		}
	}
	body, err := tmdbGet("/movie/now_playing")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, r := range gjson.Get(body, "results.#.id").Array() {
		ids = append(ids, r.String())
	}
	if rd != nil {
		bids := "["
		for i, id := range ids {
			if i > 0 {
				bids += ","
			}
			bids += fmt.Sprintf("%q", id)
		}
		bids += "]"
		if err := rd.SetEx(context.Background(), cacheKey, bids, 6*time.Hour).Err(); err != nil {
			log.Printf("[redis] Error caching now-playing ids: %s\n", err.Error())
		}
	}
	return ids, nil
}
