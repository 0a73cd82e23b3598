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
	"time"

	"github.com/charmbracelet/log"
	"github.com/croonapp/croon/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// TokenProvider supplies a currently-valid bearer token. Implemented by
// [auth.Manager].
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// Client performs authenticated calls against the Spotify Web API and
// normalizes failures into the shared error taxonomy.
//
// The client itself never retries: the single refresh-then-retry cycle lives
// inside the token provider, and a 401 received despite a freshly-validated
// token indicates revocation, surfaced as [shared.ErrTokenExpired].
type Client struct {
	auth       TokenProvider
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewClient creates a Client using the given token provider.
// A nil httpClient gets a 30 second timeout client.
func NewClient(auth TokenProvider, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Client{
		auth:       auth,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
		logger:     logger,
		BaseURL:    defaultBaseURL,
	}
}

// do performs an authenticated request against the API.
//
// 204 No Content is success with an empty result; several player endpoints
// respond this way on every call.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, result any) error {
	token, err := c.auth.GetAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: run `croon auth login`", shared.ErrNotAuthenticated)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var reqBody io.Reader
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request body: %w", err)
			}
			reqBody = bytes.NewReader(payload)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(resp, endpoint, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// mapError translates a non-2xx response into the typed error taxonomy.
func (c *Client) mapError(resp *http.Response, endpoint string, body []byte) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// The token was validated before the call; a 401 here means it was
		// revoked at the provider, not routine expiry. Not retried.
		return fmt.Errorf("%w: re-authentication required", shared.ErrTokenExpired)

	case http.StatusTooManyRequests:
		retryAfter := 1
		if v := resp.Header.Get("Retry-After"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				retryAfter = parsed
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}

	case http.StatusNotFound:
		if strings.Contains(endpoint, "player") {
			return fmt.Errorf("%w: open Spotify on a device and try again", shared.ErrNoActiveDevice)
		}

	case http.StatusForbidden:
		if gjson.GetBytes(body, "error.reason").String() == "PREMIUM_REQUIRED" {
			return shared.ErrPremiumRequired
		}
		// Commonly "already in the requested state", e.g. already playing.
		return shared.ErrActionNotPermitted
	}

	message := gjson.GetBytes(body, "error.message").String()
	c.logger.Debug("API request failed", "status", resp.StatusCode, "endpoint", endpoint, "message", message)
	return &APIError{Status: resp.StatusCode, Message: message}
}

// Me retrieves the current authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentPlayback retrieves the current playback state, or nil when nothing
// is playing.
func (c *Client) CurrentPlayback(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	if err := c.do(ctx, http.MethodGet, "/me/player", nil, &state); err != nil {
		return nil, err
	}
	if state.Item == nil && state.Device.ID == "" {
		return nil, nil
	}
	return &state, nil
}

// CurrentTrack retrieves the currently playing track, or nil when idle.
func (c *Client) CurrentTrack(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	if err := c.do(ctx, http.MethodGet, "/me/player/currently-playing", nil, &state); err != nil {
		return nil, err
	}
	if state.Item == nil {
		return nil, nil
	}
	return &state, nil
}

// Play starts or resumes playback.
//
// A track URI is sent as `uris`; album, playlist, and artist URIs are sent as
// `context_uri`. The upstream API requires this distinction.
func (c *Client) Play(ctx context.Context, contextURI, deviceID string) error {
	body := map[string]any{}
	if contextURI != "" {
		if strings.Contains(contextURI, "spotify:track:") {
			body["uris"] = []string{contextURI}
		} else {
			body["context_uri"] = contextURI
		}
	}

	endpoint := "/me/player/play"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}

	var payload any
	if len(body) > 0 {
		payload = body
	}

	return c.do(ctx, http.MethodPut, endpoint, payload, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	endpoint := "/me/player/pause"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}
	return c.do(ctx, http.MethodPut, endpoint, nil, nil)
}

// SkipToNext skips to the next track.
func (c *Client) SkipToNext(ctx context.Context, deviceID string) error {
	endpoint := "/me/player/next"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

// SkipToPrevious skips to the previous track.
func (c *Client) SkipToPrevious(ctx context.Context, deviceID string) error {
	endpoint := "/me/player/previous"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

// SetVolume sets the playback volume, clamped to [0, 100].
func (c *Client) SetVolume(ctx context.Context, volume int, deviceID string) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	endpoint := fmt.Sprintf("/me/player/volume?volume_percent=%d", volume)
	if deviceID != "" {
		endpoint += "&device_id=" + url.QueryEscape(deviceID)
	}
	return c.do(ctx, http.MethodPut, endpoint, nil, nil)
}

// SetShuffle toggles shuffle mode.
func (c *Client) SetShuffle(ctx context.Context, shuffle bool, deviceID string) error {
	endpoint := fmt.Sprintf("/me/player/shuffle?state=%t", shuffle)
	if deviceID != "" {
		endpoint += "&device_id=" + url.QueryEscape(deviceID)
	}
	return c.do(ctx, http.MethodPut, endpoint, nil, nil)
}

// Devices lists the user's available playback devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var response struct {
		Devices []Device `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}
	return response.Devices, nil
}

// TransferPlayback moves playback to another device.
func (c *Client) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	body := map[string]any{
		"device_ids": []string{deviceID},
		"play":       play,
	}
	return c.do(ctx, http.MethodPut, "/me/player", body, nil)
}

// AddToQueue appends a track to the playback queue.
func (c *Client) AddToQueue(ctx context.Context, uri, deviceID string) error {
	endpoint := "/me/player/queue?uri=" + url.QueryEscape(uri)
	if deviceID != "" {
		endpoint += "&device_id=" + url.QueryEscape(deviceID)
	}
	return c.do(ctx, http.MethodPost, endpoint, nil, nil)
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (c *Client) UserPlaylists(ctx context.Context, limit, offset int) (*PaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response PaginatedPlaylists
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PlaylistTracks retrieves a playlist's tracks with pagination.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*PaginatedPlaylistItems, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)

	var response PaginatedPlaylistItems
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreatePlaylist creates a playlist for the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	user, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist Playlist
	endpoint := fmt.Sprintf("/users/%s/playlists", user.ID)
	if err := c.do(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracksToPlaylist appends tracks to a playlist.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackURIs []string) error {
	if len(trackURIs) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrMissingArgument)
	}
	body := map[string]any{"uris": trackURIs}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/playlists/%s/tracks", playlistID), body, nil)
}

// Search queries the catalog for the given types (defaults to track).
func (c *Client) Search(ctx context.Context, query string, types []string, limit int) (*SearchResult, error) {
	if len(types) == 0 {
		types = []string{"track"}
	}
	if limit <= 0 {
		limit = 20
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=%s&limit=%d",
		url.QueryEscape(query), strings.Join(types, ","), limit)

	var response SearchResult
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Artist retrieves an artist by ID.
func (c *Client) Artist(ctx context.Context, artistID string) (*Artist, error) {
	var artist Artist
	if err := c.do(ctx, http.MethodGet, "/artists/"+artistID, nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) (*RecentlyPlayed, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)

	var response RecentlyPlayed
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
