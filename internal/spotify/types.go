// Spotify Web API response types, based on
// https://developer.spotify.com/documentation/web-api/reference/
package spotify

type followers struct {
	Total int `json:"total"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// Track represents a Spotify track.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []Artist    `json:"artists"`
	Album       Album       `json:"album"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	ExternalIDs externalIDs `json:"external_ids"`
	Popularity  int         `json:"popularity"`
	URI         string      `json:"uri"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Owner identifies a playlist owner.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int            `json:"total"`
	Items []PlaylistItem `json:"items"`
}

// Playlist represents a Spotify playlist.
type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	Images      []Image        `json:"images"`
	URI         string         `json:"uri"`
}

// PlaylistItem represents a track within a playlist context.
type PlaylistItem struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SimplePlaylist represents a simplified playlist object (used in lists).
type SimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	Images      []Image              `json:"images"`
	URI         string               `json:"uri"`
}

// PaginatedPlaylists represents a paginated response of playlists.
type PaginatedPlaylists struct {
	Items    []SimplePlaylist `json:"items"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
}

// PaginatedPlaylistItems represents a paginated response of playlist tracks.
type PaginatedPlaylistItems struct {
	Items    []PlaylistItem `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// Device represents a playback device. Device data is passed through from the
// API untouched.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	VolumePercent int    `json:"volume_percent"`
}

// Context identifies the playable collection a playback state belongs to.
type Context struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// PlaybackState represents the current playback state of the active device.
type PlaybackState struct {
	Device       Device   `json:"device"`
	ShuffleState bool     `json:"shuffle_state"`
	RepeatState  string   `json:"repeat_state"`
	Context      *Context `json:"context"`
	ProgressMS   int      `json:"progress_ms"`
	IsPlaying    bool     `json:"is_playing"`
	Item         *Track   `json:"item"`
}

// PlayHistoryItem represents an entry in the recently-played feed.
type PlayHistoryItem struct {
	Track    Track    `json:"track"`
	PlayedAt string   `json:"played_at"`
	Context  *Context `json:"context"`
}

// RecentlyPlayed represents the recently-played response.
type RecentlyPlayed struct {
	Items []PlayHistoryItem `json:"items"`
}

type paginatedTracks struct {
	Items []Track `json:"items"`
	Total int     `json:"total"`
}

type paginatedArtists struct {
	Items []Artist `json:"items"`
	Total int      `json:"total"`
}

type paginatedAlbums struct {
	Items []Album `json:"items"`
	Total int     `json:"total"`
}

// SearchResult represents a search response across requested types.
type SearchResult struct {
	Tracks    paginatedTracks    `json:"tracks"`
	Artists   paginatedArtists   `json:"artists"`
	Albums    paginatedAlbums    `json:"albums"`
	Playlists PaginatedPlaylists `json:"playlists"`
}
