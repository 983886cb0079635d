package roomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the game server's REST surface: room creation,
// playlist search and game control. Failures are returned to the
// caller carrying the response body; nothing is retried here.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Playlist is a search result the room owner can start a game from.
type Playlist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

type roomUpdateRequest struct {
	UserID string `json:"user_id"`
}

type newRoomResponse struct {
	RoomID string `json:"room_id"`
}

type newGameRequest struct {
	UserID        string   `json:"user_id"`
	PlaylistID    string   `json:"playlist_id"`
	NumQuestions  *int     `json:"num_questions,omitempty"`
	QuestionTypes []string `json:"question_types"`
}

// CreateRoom creates a room owned by the given user and returns its id.
func (c *Client) CreateRoom(ctx context.Context, userID string) (string, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/room", roomUpdateRequest{UserID: userID})
	if err != nil {
		return "", err
	}

	var resp newRoomResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode room response: %w", err)
	}
	return resp.RoomID, nil
}

// IsOwner reports whether the user owns the room.
func (c *Client) IsOwner(ctx context.Context, roomID, userID string) (bool, error) {
	path := fmt.Sprintf("/api/room/%s/is_owner?user_id=%s", roomID, url.QueryEscape(userID))
	body, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}

	var owner bool
	if err := json.Unmarshal(body, &owner); err != nil {
		return false, fmt.Errorf("failed to decode owner response: %w", err)
	}
	return owner, nil
}

// SearchPlaylists searches the music catalogue for playlists.
func (c *Client) SearchPlaylists(ctx context.Context, query string) ([]Playlist, error) {
	path := "/api/search?query=" + url.QueryEscape(query)
	body, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var playlists []Playlist
	if err := json.Unmarshal(body, &playlists); err != nil {
		return nil, fmt.Errorf("failed to decode playlist response: %w", err)
	}
	return playlists, nil
}

// NewGame starts a game from a playlist. Only the room owner may call
// it. numQuestions <= 0 keeps the server default. questionTypes may be
// a subset of Song/Artist.
func (c *Client) NewGame(ctx context.Context, roomID, userID, playlistID string, numQuestions int, questionTypes []string) error {
	req := newGameRequest{
		UserID:        userID,
		PlaylistID:    playlistID,
		QuestionTypes: questionTypes,
	}
	if numQuestions > 0 {
		req.NumQuestions = &numQuestions
	}

	_, err := c.request(ctx, http.MethodPut, "/api/room/"+roomID+"/new_game", req)
	return err
}

// RestartGame replays an ended game with the same playlist.
func (c *Client) RestartGame(ctx context.Context, roomID, userID string) error {
	_, err := c.request(ctx, http.MethodPut, "/api/room/"+roomID+"/restart", roomUpdateRequest{UserID: userID})
	return err
}

// ResetRoom returns the room to the lobby and zeroes all scores.
func (c *Client) ResetRoom(ctx context.Context, roomID, userID string) error {
	_, err := c.request(ctx, http.MethodPut, "/api/room/"+roomID+"/reset", roomUpdateRequest{UserID: userID})
	return err
}

func (c *Client) request(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(responseBody))
	}

	return responseBody, nil
}
