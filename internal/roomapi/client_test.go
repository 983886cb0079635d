package roomapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/room", r.URL.Path)

		var req struct {
			UserID string `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "id-1", req.UserID)

		json.NewEncoder(w).Encode(map[string]string{"room_id": "r4nd0m1d"})
	}))
	defer server.Close()

	roomID, err := NewClient(server.URL).CreateRoom(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "r4nd0m1d", roomID)
}

func TestSearchPlaylists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		require.Equal(t, "rock classics", r.URL.Query().Get("query"))

		w.Write([]byte(`[
			{"id": "pl1", "name": "Rock Classics", "owner": {"display_name": "spotify"}}
		]`))
	}))
	defer server.Close()

	playlists, err := NewClient(server.URL).SearchPlaylists(context.Background(), "rock classics")
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, "pl1", playlists[0].ID)
	assert.Equal(t, "spotify", playlists[0].Owner.DisplayName)
}

func TestNewGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/room/r1/new_game", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pl1", req["playlist_id"])
		assert.Equal(t, float64(15), req["num_questions"])

		w.Write([]byte("null"))
	}))
	defer server.Close()

	err := NewClient(server.URL).NewGame(context.Background(), "r1", "id-1", "pl1", 15, []string{"Song"})
	require.NoError(t, err)
}

func TestNewGameOmitsDefaultQuestionCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, present := req["num_questions"]
		assert.False(t, present)
		w.Write([]byte("null"))
	}))
	defer server.Close()

	err := NewClient(server.URL).NewGame(context.Background(), "r1", "id-1", "pl1", 0, nil)
	require.NoError(t, err)
}

func TestErrorCarriesResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Only the room owner can reset the room", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewClient(server.URL).ResetRoom(context.Background(), "r1", "id-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "Only the room owner can reset the room")
}

func TestIsOwner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/room/r1/is_owner", r.URL.Path)
		require.Equal(t, "id-1", r.URL.Query().Get("user_id"))
		w.Write([]byte("true"))
	}))
	defer server.Close()

	owner, err := NewClient(server.URL).IsOwner(context.Background(), "r1", "id-1")
	require.NoError(t, err)
	assert.True(t, owner)
}
