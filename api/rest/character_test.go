package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacter_CreatedOnFirstAccess(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.get("/api/character", bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "alice", resp["name"])
	assert.Equal(t, float64(1), resp["level"])
	assert.Equal(t, float64(100), resp["gold"])
	assert.Equal(t, float64(10), resp["stamina"])
}

func TestCharacter_Update(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.do(http.MethodPut, "/api/character", map[string]string{
		"name": "Aria", "skin": "ranger",
	}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, ts.get("/api/character", bearer(token)...))
	assert.Equal(t, "Aria", resp["name"])
	assert.Equal(t, "ranger", resp["skin"])
}

func TestCharacter_Stats(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.get("/api/character/stats", bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, float64(80), resp["total_stats"]) // 8 stats at 10 each
	assert.Equal(t, float64(40), resp["health_score"])
	stats := resp["stats"].(map[string]interface{})
	assert.Len(t, stats, 8)
	assert.Equal(t, float64(10), stats["cardio"])
}

func TestCharacter_HistoryRejectsUnknownStat(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.get("/api/character/history?stat=charisma", bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCharacter_AchievementsEmpty(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.get("/api/character/achievements", bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Empty(t, resp["achievements"])
}
