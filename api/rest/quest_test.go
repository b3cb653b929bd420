package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	tmplID := ts.createTemplateViaAdmin(t, "Morning run", 50, map[string]int{"cardio": 2})

	// Assign.
	w := ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decodeBody(t, w)
	questID := int64(q["id"].(float64))
	assert.Equal(t, "assigned", q["status"])
	assert.Equal(t, float64(50), q["experience_reward"])

	// Start.
	w = ts.post(questPath(questID, "start"), nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "in_progress", decodeBody(t, w)["status"])

	// Complete.
	w = ts.post(questPath(questID, "complete"), map[string]interface{}{
		"difficulty_rating": 3,
	}, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeBody(t, w)
	char := res["character"].(map[string]interface{})
	assert.Equal(t, float64(50), char["experience_points"])
	assert.Equal(t, float64(12), char["cardio"])
	streak := res["streak"].(map[string]interface{})
	assert.Equal(t, float64(1), streak["current_streak"])

	// Completing again conflicts.
	w = ts.post(questPath(questID, "complete"), nil, bearer(token)...)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuestComplete_WithoutStartConflicts(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	tmplID := ts.createTemplateViaAdmin(t, "Morning run", 50, nil)

	w := ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code)
	questID := int64(decodeBody(t, w)["id"].(float64))

	w = ts.post(questPath(questID, "complete"), nil, bearer(token)...)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuest_OwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "alice")
	bob := ts.signup(t, "bob@example.com", "bob")
	tmplID := ts.createTemplateViaAdmin(t, "Morning run", 50, nil)

	w := ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(alice)...)
	require.Equal(t, http.StatusCreated, w.Code)
	questID := int64(decodeBody(t, w)["id"].(float64))

	// Another user cannot touch it.
	assert.Equal(t, http.StatusNotFound, ts.post(questPath(questID, "start"), nil, bearer(bob)...).Code)
}

func TestQuestDaily_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	ts.createTemplateViaAdmin(t, "Morning run", 50, nil)
	ts.createTemplateViaAdmin(t, "Morning stretch", 20, nil)

	w := ts.post("/api/quests/daily", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])

	w = ts.post("/api/quests/daily", nil, bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])
}

func TestQuestList_FilterByStatus(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	tmplID := ts.createTemplateViaAdmin(t, "Morning run", 50, nil)

	w := ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(token)...)
	questID := int64(decodeBody(t, w)["id"].(float64))
	ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(token)...)
	ts.post(questPath(questID, "start"), nil, bearer(token)...)

	resp := decodeBody(t, ts.get("/api/quests?status=in_progress", bearer(token)...))
	assert.Len(t, resp["quests"], 1)
	resp = decodeBody(t, ts.get("/api/quests", bearer(token)...))
	assert.Len(t, resp["quests"], 2)
}

func TestQuestStreak_Endpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")

	w := ts.get("/api/quests/streak", bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, float64(0), resp["current_streak"])
}

func TestQuestCompletions_Listed(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	tmplID := ts.createTemplateViaAdmin(t, "Morning run", 50, nil)

	w := ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(token)...)
	questID := int64(decodeBody(t, w)["id"].(float64))
	ts.post(questPath(questID, "start"), nil, bearer(token)...)
	require.Equal(t, http.StatusOK, ts.post(questPath(questID, "complete"), nil, bearer(token)...).Code)

	resp := decodeBody(t, ts.get("/api/quests/completions", bearer(token)...))
	assert.Len(t, resp["completions"], 1)
}

func TestQuestAssign_InactiveTemplate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice@example.com", "alice")
	tmplID := ts.createTemplateViaAdmin(t, "Retired", 50, nil)

	w := ts.do(http.MethodPut, questTemplateActivePath(tmplID), map[string]interface{}{
		"is_active": false,
	}, "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.post("/api/quests", map[string]interface{}{"template_id": tmplID}, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
