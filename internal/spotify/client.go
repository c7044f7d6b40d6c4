package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Artist is one credited artist on a catalog track, in catalog order.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a catalog search candidate.
type Track struct {
	ID          string
	Name        string
	Artists     []Artist
	ExternalURL string
}

// ArtistNames returns all credited artist names in catalog order.
func (t Track) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// PrimaryArtist returns the first credited artist name, or "".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// Client is a Spotify Web API client covering catalog search and
// playlist reads/writes.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	// Overridable for testing
	tokenURL string
	apiURL   string
}

// New creates a new Spotify client.
func New(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tokenURL:     "https://accounts.spotify.com/api/token",
		apiURL:       "https://api.spotify.com/v1",
	}
}

// Search queries the Spotify search API for candidate tracks matching the
// given artist and title. Candidates come back unranked; scoring and
// selection belong to the caller.
func (c *Client) Search(ctx context.Context, artist, title string) ([]Track, error) {
	q := buildSearchQuery(artist, title)
	if q == "" {
		return nil, nil
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify auth failed: %w", err)
	}

	reqURL := fmt.Sprintf("%s/search?type=track&limit=5&q=%s", c.apiURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.doWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("spotify search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode spotify response: %w", err)
	}

	return parseSearchResults(searchResp), nil
}

// PlaylistTracks returns the IDs of all tracks currently in the playlist,
// following pagination.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify auth failed: %w", err)
	}

	var ids []string
	next := fmt.Sprintf("%s/playlists/%s/tracks?fields=items(track(id)),next&limit=100",
		c.apiURL, url.PathEscape(playlistID))

	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create playlist request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.doWithRetry(req)
		if err != nil {
			return nil, fmt.Errorf("playlist request failed: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("playlist request returned %d: %s", resp.StatusCode, body)
		}

		var page playlistPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode playlist page: %w", err)
		}

		for _, item := range page.Items {
			if item.Track.ID != "" {
				ids = append(ids, item.Track.ID)
			}
		}
		next = page.Next
	}

	return ids, nil
}

// AddToPlaylist appends one track to the playlist.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return fmt.Errorf("spotify auth failed: %w", err)
	}

	payload, err := json.Marshal(map[string][]string{
		"uris": {"spotify:track:" + trackID},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal add request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/playlists/%s/tracks", c.apiURL, url.PathEscape(playlistID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create add request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("add request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("add request returned %d: %s", resp.StatusCode, body)
	}

	return nil
}

func buildSearchQuery(artist, title string) string {
	var parts []string
	if title != "" {
		parts = append(parts, "track:"+title)
	}
	if artist != "" {
		parts = append(parts, "artist:"+artist)
	}
	return strings.Join(parts, " ")
}

// getToken returns a valid access token, refreshing if necessary.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	data := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request returned %d: %s", resp.StatusCode, body)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	// Refresh a bit early to avoid edge-case expiry
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)

	return c.accessToken, nil
}

// doWithRetry executes the request, retrying once on 429.
// Clones the request before retry to avoid issues with consumed bodies.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		retryAfter := 1
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if parsed, err := strconv.Atoi(ra); err == nil {
				retryAfter = parsed
			}
		}
		time.Sleep(time.Duration(retryAfter) * time.Second)

		retry := req.Clone(req.Context())
		return c.httpClient.Do(retry)
	}

	return resp, nil
}

func parseSearchResults(resp searchResponse) []Track {
	var results []Track
	for _, item := range resp.Tracks.Items {
		results = append(results, Track{
			ID:          item.ID,
			Name:        item.Name,
			Artists:     item.Artists,
			ExternalURL: item.ExternalURLs.Spotify,
		})
	}
	return results
}

// Spotify API response types

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type searchResponse struct {
	Tracks struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type trackItem struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Artists      []Artist    `json:"artists"`
	ExternalURLs externalURL `json:"external_urls"`
}

type externalURL struct {
	Spotify string `json:"spotify"`
}

type playlistPage struct {
	Items []struct {
		Track struct {
			ID string `json:"id"`
		} `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}
