package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitquest/server/api/rest"
	"github.com/habitquest/server/audit"
	"github.com/habitquest/server/cache"
	"github.com/habitquest/server/config"
	"github.com/habitquest/server/game/achievement"
	"github.com/habitquest/server/game/guild"
	"github.com/habitquest/server/game/nutrition"
	"github.com/habitquest/server/game/progression"
	"github.com/habitquest/server/game/quest"
	mw "github.com/habitquest/server/middleware"
	"github.com/habitquest/server/scheduler"
	"github.com/habitquest/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testAdminKey = "test-admin-key"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	cache  cache.Cache
	sec    config.SecurityConfig
}

// newTestServer wires the full route table against an in-memory DB and
// local cache, mirroring the production bootstrap.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(nil) })
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	achievementSvc := achievement.NewService(progression.CharacterCurve, logger)
	questSvc := quest.NewService(db, progression.CharacterCurve, progression.GuildCurve, achievementSvc, logger)
	guildSvc := guild.NewService(db, progression.CharacterCurve, progression.GuildCurve, 4, 8, logger)
	nutritionSvc := nutrition.NewService(db, logger)

	authH := rest.NewAuthHandler(db, c, sec, auditSvc)
	charH := rest.NewCharacterHandler(db)
	questH := rest.NewQuestHandler(db, questSvc, auditSvc)
	guildH := rest.NewGuildHandler(guildSvc, auditSvc)
	nutritionH := rest.NewNutritionHandler(nutritionSvc)
	rankH := rest.NewRankingHandler(db, c, logger)
	adminH := rest.NewAdminHandler(db, sched, logger)

	r := gin.New()
	api := r.Group("/api")

	authG := api.Group("/auth")
	authG.POST("/register", authH.Register)
	authG.POST("/login", authH.Login)
	authG.POST("/logout", mw.Auth(sec, c), authH.Logout)
	authG.POST("/refresh", mw.Auth(sec, c), authH.Refresh)

	charG := api.Group("/character")
	charG.Use(mw.Auth(sec, c))
	charG.GET("", charH.Get)
	charG.PUT("", charH.Update)
	charG.GET("/stats", charH.Stats)
	charG.GET("/history", charH.History)
	charG.GET("/achievements", charH.Achievements)

	questsG := api.Group("/quests")
	questsG.Use(mw.Auth(sec, c))
	questsG.GET("", questH.List)
	questsG.POST("", questH.Assign)
	questsG.POST("/daily", questH.Daily)
	questsG.GET("/streak", questH.Streak)
	questsG.GET("/completions", questH.Completions)
	questsG.POST("/:id/start", questH.Start)
	questsG.POST("/:id/complete", questH.Complete)
	questsG.POST("/:id/fail", questH.Fail)

	guildsG := api.Group("/guilds")
	guildsG.Use(mw.Auth(sec, c))
	guildsG.GET("", guildH.List)
	guildsG.POST("", guildH.Create)
	guildsG.GET("/mine", guildH.Mine)
	guildsG.POST("/leave", guildH.Leave)
	guildsG.POST("/quests", guildH.CreateQuest)
	guildsG.POST("/quests/:id/progress", guildH.Progress)
	guildsG.GET("/messages", guildH.ListMessages)
	guildsG.POST("/messages", guildH.PostMessage)
	guildsG.GET("/:id", guildH.Detail)
	guildsG.POST("/:id/join", guildH.Join)
	guildsG.GET("/:id/members", guildH.Members)
	guildsG.GET("/:id/quests", guildH.ListQuests)

	nutritionG := api.Group("/nutrition")
	nutritionG.Use(mw.Auth(sec, c))
	nutritionG.POST("/logs", nutritionH.Create)
	nutritionG.GET("/logs", nutritionH.List)
	nutritionG.GET("/stats", nutritionH.Stats)

	supplementsG := api.Group("/supplements")
	supplementsG.Use(mw.Auth(sec, c))
	supplementsG.GET("", nutritionH.ListSupplements)
	supplementsG.GET("/mine", nutritionH.ListRegimens)
	supplementsG.POST("/mine", nutritionH.AddRegimen)
	supplementsG.DELETE("/mine/:id", nutritionH.StopRegimen)
	supplementsG.GET("/logs", nutritionH.ListIntakes)
	supplementsG.POST("/logs", nutritionH.LogIntake)

	api.GET("/ranking/exp", rankH.TopExp)

	adminG := api.Group("/admin")
	adminG.Use(rest.AdminAuth(testAdminKey))
	adminG.GET("/metrics", adminH.Metrics)
	adminG.GET("/templates", adminH.ListTemplates)
	adminG.POST("/templates", adminH.CreateTemplate)
	adminG.PUT("/templates/:id/active", adminH.SetTemplateActive)
	adminG.POST("/achievements", adminH.CreateAchievement)
	adminG.POST("/supplements", adminH.CreateSupplement)
	adminG.POST("/users/:id/ban", adminH.BanUser)
	adminG.POST("/ranking/refresh", rankH.RefreshRanking)
	adminG.GET("/scheduler", adminH.ListSchedulerTasks)

	return &testServer{router: r, db: db, cache: c, sec: sec}
}

func (ts *testServer) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(path string, headers ...string) *httptest.ResponseRecorder {
	return ts.do(http.MethodGet, path, nil, headers...)
}

func (ts *testServer) post(path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, path, body, headers...)
}

func (ts *testServer) del(path string, headers ...string) *httptest.ResponseRecorder {
	return ts.do(http.MethodDelete, path, nil, headers...)
}

// signup registers and logs in a user, returning the bearer token.
func (ts *testServer) signup(t *testing.T, email, nickname string) string {
	t.Helper()
	w := ts.post("/api/auth/register", map[string]string{
		"email": email, "nickname": nickname, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.post("/api/auth/login", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["token"].(string)
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// createTemplateViaAdmin creates a quest template through the admin API
// and returns its ID.
func (ts *testServer) createTemplateViaAdmin(t *testing.T, title string, exp int, targets map[string]int) int64 {
	t.Helper()
	w := ts.post("/api/admin/templates", map[string]interface{}{
		"title":           title,
		"category":        "morning",
		"target_stats":    targets,
		"base_experience": exp,
		"base_gold":       10,
	}, "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody(t, w)
	return int64(resp["id"].(float64))
}

func questPath(id int64, action string) string {
	return fmt.Sprintf("/api/quests/%d/%s", id, action)
}

func questTemplateActivePath(id int64) string {
	return fmt.Sprintf("/api/admin/templates/%d/active", id)
}
