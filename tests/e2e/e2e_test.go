//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// These tests:
//   T-E2E-1: Full attendance cycle (punch-in → today → punch-out → re-punch-in)
//   T-E2E-2: Out-of-range punch is rejected with nearest-branch context
//   T-E2E-3: Double punch-in is rejected
//   T-E2E-4: Punch-out without punch-in is rejected
//   T-E2E-5: Protected routes require a valid access token
//   T-E2E-6: Punch events are persisted by the background worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buzzhire/internal/config"
	"buzzhire/internal/geo"
	"buzzhire/internal/infra"
	"buzzhire/internal/model"
	"buzzhire/internal/repository"
	"buzzhire/internal/router"
	"buzzhire/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const (
	hqLat = 28.613939
	hqLon = 77.209023
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func punchBody(t *testing.T, lat, lon float64) *bytes.Buffer {
	t.Helper()
	return jsonBody(t, map[string]any{"latitude": lat, "longitude": lon})
}

type punchEnvelope struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Branch   string          `json:"branch"`
	Distance float64         `json:"distance"`
	Data     json.RawMessage `json:"data"`
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string
	userID uuid.UUID
	db     *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("buzzhire_test"),
		tcPostgres.WithUsername("buzzhire"),
		tcPostgres.WithPassword("buzzhire"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	// Build config: single HQ branch, 200 m radius
	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		WorkerPoolSize:     1,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		GoogleClientID:     "test-client",
		AllowedEmails:      []string{"employee@e2e.test"},
		Branches:           []geo.Branch{{Name: "HQ", Lat: hqLat, Lon: hqLon}},
		PunchRadiusM:       200,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the employee. Google sign-in cannot run offline, so the access
	// token is minted directly with the shared secret.
	user := &model.User{
		Email:       "employee@e2e.test",
		Name:        "Employee E2E",
		LastLoginAt: time.Now(),
		Active:      true,
	}
	require.NoError(t, db.Create(user).Error)

	resolver, err := geo.NewResolver(cfg.Branches, cfg.PunchRadiusM)
	require.NoError(t, err)

	// Background worker drains the punch event queue
	workerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	worker.StartPool(workerCtx, rdb, &worker.Handlers{
		PunchEvent: worker.NewPunchEventWorker(repository.NewPunchEventRepository(db)),
	}, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, resolver)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server: srv,
		token:  mintAccessToken(t, cfg.JWTSecret, user),
		userID: user.ID,
		db:     db,
	}
}

func mintAccessToken(t *testing.T, secret string, user *model.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"name":    user.Name,
		"picture": "",
		"typ":     "access",
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// ── Tests ────────────────────────────────────────────────────────────────────

// T-E2E-1: Full attendance cycle
func TestE2E_FullAttendanceCycle(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Punch in at HQ
	inResp := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusCreated, inResp.StatusCode)
	var in punchEnvelope
	decodeJSON(t, inResp, &in)
	assert.Equal(t, "success", in.Status)
	assert.Equal(t, "Punch in successful at HQ", in.Message)
	assert.Equal(t, "HQ", in.Branch)
	assert.InDelta(t, 0, in.Distance, 0.01)

	// 2. Today reflects the open cycle
	todayResp := do(t, env.server, "GET", "/v1/attendance/today", nil, env.token)
	require.Equal(t, http.StatusOK, todayResp.StatusCode)
	var today struct {
		Status string `json:"status"`
		Data   struct {
			IsPunchedIn   bool   `json:"is_punched_in"`
			HasPunchedOut bool   `json:"has_punched_out"`
			Branch        string `json:"branch"`
		} `json:"data"`
	}
	decodeJSON(t, todayResp, &today)
	assert.True(t, today.Data.IsPunchedIn)
	assert.False(t, today.Data.HasPunchedOut)
	assert.Equal(t, "HQ", today.Data.Branch)

	// 3. Punch out
	outResp := do(t, env.server, "POST", "/v1/attendance/punch-out", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusOK, outResp.StatusCode)
	var out punchEnvelope
	decodeJSON(t, outResp, &out)
	assert.Equal(t, "Punch out successful", out.Message)

	// 4. Re-punch-in the same day reuses the record
	againResp := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusCreated, againResp.StatusCode)
	var again punchEnvelope
	decodeJSON(t, againResp, &again)
	assert.Equal(t, "Punch in updated successfully at HQ", again.Message)

	// Still a single record for the day
	var count int64
	require.NoError(t, env.db.Model(&model.AttendanceRecord{}).
		Where("user_id = ?", env.userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// T-E2E-2: Out-of-range punch rejected
func TestE2E_PunchInOutOfRange(t *testing.T) {
	env := setupTestEnv(t)

	// ~1 degree north of HQ is far outside any plausible radius
	resp := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat+1, hqLon), env.token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Status        string  `json:"status"`
		Message       string  `json:"message"`
		NearestBranch string  `json:"nearest_branch"`
		Distance      float64 `json:"distance"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "failed", body.Status)
	assert.Equal(t, "You are out of range", body.Message)
	assert.Equal(t, "HQ", body.NearestBranch)
	assert.Greater(t, body.Distance, 10000.0)
}

// T-E2E-3: Double punch-in rejected
func TestE2E_DoublePunchInRejected(t *testing.T) {
	env := setupTestEnv(t)

	first := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	first.Body.Close()

	second := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusBadRequest, second.StatusCode)
	var body punchEnvelope
	decodeJSON(t, second, &body)
	assert.Equal(t, "You are already punched in today", body.Message)
	assert.NotNil(t, body.Data)
}

// T-E2E-4: Punch-out without punch-in rejected
func TestE2E_PunchOutWithoutPunchIn(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/attendance/punch-out", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body punchEnvelope
	decodeJSON(t, resp, &body)
	assert.Equal(t, "You have not punched in today", body.Message)
}

// T-E2E-5: Protected routes require a valid access token
func TestE2E_AuthRequired(t *testing.T) {
	env := setupTestEnv(t)

	noToken := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat, hqLon), "")
	assert.Equal(t, http.StatusUnauthorized, noToken.StatusCode)
	noToken.Body.Close()

	badToken := do(t, env.server, "GET", "/v1/attendance/today", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, badToken.StatusCode)
	badToken.Body.Close()

	health := do(t, env.server, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, health.StatusCode)
	health.Body.Close()
}

// T-E2E-6: Punch events persisted by the worker
func TestE2E_PunchEventsRecorded(t *testing.T) {
	env := setupTestEnv(t)

	in := do(t, env.server, "POST", "/v1/attendance/punch-in", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusCreated, in.StatusCode)
	in.Body.Close()

	out := do(t, env.server, "POST", "/v1/attendance/punch-out", punchBody(t, hqLat, hqLon), env.token)
	require.Equal(t, http.StatusOK, out.StatusCode)
	out.Body.Close()

	// The worker consumes the queue asynchronously
	require.Eventually(t, func() bool {
		var count int64
		if err := env.db.Model(&model.PunchEvent{}).
			Where("user_id = ?", env.userID).Count(&count).Error; err != nil {
			return false
		}
		return count == 2
	}, 15*time.Second, 200*time.Millisecond)

	var events []model.PunchEvent
	require.NoError(t, env.db.Where("user_id = ?", env.userID).
		Order("occurred_at ASC").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, "punch_in", events[0].Kind)
	assert.Equal(t, "punch_out", events[1].Kind)
	assert.Equal(t, "HQ", events[0].BranchName)
}
