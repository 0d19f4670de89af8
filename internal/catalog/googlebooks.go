// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/pdiddy/bookshelf-engine/internal/httputil"
	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// googleBooksAPIBase is the Google Books volumes endpoint. Declared as a
// var so tests can substitute an httptest server.
var googleBooksAPIBase = "https://www.googleapis.com/books/v1/volumes"

// googleBooksMaxPage is the largest page size the volumes API accepts.
const googleBooksMaxPage = 40

// defaultCacheSize bounds the response cache when the config leaves it zero.
const defaultCacheSize = 256

// ErrVolumeNotFound is returned when a volume id does not exist in the catalog.
var ErrVolumeNotFound = errors.New("volume not found")

// GoogleBooksBackend queries the Google Books volumes API. Responses are
// cached by request URL and outbound calls go through a rate limiter so
// hammering the shared quota stays impossible.
type GoogleBooksBackend struct {
	Client  *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, []types.Candidate]
}

// NewGoogleBooksBackend builds the backend with a limiter and cache sized
// from cfg. A nil client falls back to one using cfg.Timeout.
func NewGoogleBooksBackend(client *http.Client, cfg types.CatalogConfig) *GoogleBooksBackend {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	b := &GoogleBooksBackend{Client: client}

	if cfg.RequestsPerSecond > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	size := cfg.CacheSize
	if size == 0 {
		size = defaultCacheSize
	}
	if size > 0 {
		b.cache, _ = lru.New[string, []types.Candidate](size)
	}
	return b
}

// Name returns the backend identifier.
func (b *GoogleBooksBackend) Name() string { return "google_books" }

// Search queries the volumes API and maps the result page to candidates.
// The page is overfetched at twice cfg.MaxResults (capped at the API
// maximum of 40) so downstream variant filtering can still fill it.
func (b *GoogleBooksBackend) Search(ctx context.Context, query string, cfg types.CatalogConfig) ([]types.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty catalog query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}
	page := maxResults * 2
	if page > googleBooksMaxPage {
		page = googleBooksMaxPage
	}

	params := url.Values{
		"q":          {query},
		"maxResults": {strconv.Itoa(page)},
	}
	if cfg.LanguageRestrict != "" {
		params.Set("langRestrict", cfg.LanguageRestrict)
	}
	if cfg.OrderBy != "" {
		params.Set("orderBy", cfg.OrderBy)
	}
	if cfg.APIKey != "" {
		params.Set("key", cfg.APIKey)
	}

	reqURL := googleBooksAPIBase + "?" + params.Encode()

	if b.cache != nil {
		if hit, ok := b.cache.Get(reqURL); ok {
			return append([]types.Candidate(nil), hit...), nil
		}
	}

	body, err := b.get(ctx, reqURL, cfg)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var vr volumesResponse
	if err := json.NewDecoder(body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("parsing Google Books response: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(vr.Items))
	for _, item := range vr.Items {
		candidates = append(candidates, item.toCandidate())
	}

	if b.cache != nil {
		b.cache.Add(reqURL, candidates)
	}
	return candidates, nil
}

// Volume fetches a single volume by its catalog id.
func (b *GoogleBooksBackend) Volume(ctx context.Context, id string, cfg types.CatalogConfig) (types.Candidate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Candidate{}, fmt.Errorf("empty volume id")
	}

	reqURL := googleBooksAPIBase + "/" + url.PathEscape(id)
	if cfg.APIKey != "" {
		reqURL += "?key=" + url.QueryEscape(cfg.APIKey)
	}

	body, err := b.get(ctx, reqURL, cfg)
	if errors.Is(err, ErrVolumeNotFound) {
		return types.Candidate{}, fmt.Errorf("%w: %s", ErrVolumeNotFound, id)
	}
	if err != nil {
		return types.Candidate{}, err
	}
	defer body.Close()

	var item volumeItem
	if err := json.NewDecoder(body).Decode(&item); err != nil {
		return types.Candidate{}, fmt.Errorf("parsing Google Books response: %w", err)
	}
	return item.toCandidate(), nil
}

// get performs a rate-limited GET with retry and returns the response body.
func (b *GoogleBooksBackend) get(ctx context.Context, reqURL string, cfg types.CatalogConfig) (io.ReadCloser, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Google Books API request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrVolumeNotFound
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("Google Books API returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Google Books API JSON structures.
type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Description   string     `json:"description"`
	Categories    []string   `json:"categories"`
	AverageRating float64    `json:"averageRating"`
	RatingsCount  int        `json:"ratingsCount"`
	PublishedDate string     `json:"publishedDate"`
	Language      string     `json:"language"`
	ImageLinks    imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

func (it volumeItem) toCandidate() types.Candidate {
	vi := it.VolumeInfo
	cover := vi.ImageLinks.Thumbnail
	if cover == "" {
		cover = vi.ImageLinks.SmallThumbnail
	}
	return types.Candidate{
		ExternalID:    it.ID,
		Title:         vi.Title,
		Authors:       vi.Authors,
		Description:   vi.Description,
		CoverURL:      cover,
		Rating:        vi.AverageRating,
		RatingsCount:  vi.RatingsCount,
		PublishedYear: publishedYear(vi.PublishedDate),
		Categories:    vi.Categories,
		Source:        "google_books",
	}
}

// publishedYear extracts the year from the date forms the API emits:
// "2013", "2013-04" and "2013-04-02". Anything else yields zero.
func publishedYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
