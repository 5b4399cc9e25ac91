// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loandesk/internal/api"
	"loandesk/internal/common/auth"
	"loandesk/internal/common/config"
	"loandesk/internal/common/database"
	"loandesk/internal/common/facebook"
	"loandesk/internal/common/logger"
	"loandesk/internal/intake"
	"loandesk/internal/models"
	"loandesk/internal/notify"
	"loandesk/internal/permissions"
	"loandesk/internal/service"
	"loandesk/internal/store"
)

const verifyToken = "e2e-verify-token"

// ==========================
// 1. Environment
// ==========================

// e2eConfig points at local Postgres and Redis, overridable through the usual
// DB_* and REDIS_* variables.
func e2eConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "loandesk-e2e"
	cfg.Database.Postgres = config.PostgresConfig{
		Host:           envOr("DB_HOST", "localhost"),
		Port:           5432,
		Database:       envOr("DB_NAME", "loandesk"),
		User:           envOr("DB_USER", "postgres"),
		Password:       envOr("DB_PASSWORD", "postgres"),
		MaxConnections: 5,
		MaxIdle:        2,
		SSLMode:        "disable",
	}
	if port, err := strconv.Atoi(os.Getenv("DB_PORT")); err == nil {
		cfg.Database.Postgres.Port = port
	}
	cfg.Database.Redis = config.RedisConfig{
		Address:  envOr("REDIS_ADDRESS", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		LeadTTL:  60,
	}
	cfg.Facebook.VerifyToken = verifyToken
	cfg.Intake.DefaultBranchID = "main"
	cfg.Intake.DefaultLoanType = "Personal Loan"
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type environment struct {
	server   *httptest.Server
	leads    *store.LeadStore
	staff    *store.StaffStore
	leadgens map[string]string
}

// setupEnvironment wires the full application against real services and a
// fake Graph API that answers for any leadgen id registered in leadgens.
func setupEnvironment(t *testing.T) *environment {
	t.Helper()
	if os.Getenv("LOANDESK_E2E") == "" {
		t.Skip("set LOANDESK_E2E=1 to run against local postgres and redis")
	}

	ctx := context.Background()
	cfg := e2eConfig()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres, cfg.App.Name)
	require.NoError(t, err, "postgres connection failed")
	require.NoError(t, pg.Ping(ctx), "postgres ping failed")
	t.Cleanup(func() { _ = pg.Close() })
	require.NoError(t, database.Migrate(ctx, pg.SQL()), "migrations failed")

	rdb := database.NewRedis(cfg.Database.Redis, cfg.App.Name)
	require.NoError(t, rdb.Ping(ctx), "redis ping failed")
	t.Cleanup(func() { _ = rdb.Close() })

	env := &environment{
		leads:    store.NewLeadStore(pg.DB),
		staff:    store.NewStaffStore(pg.DB),
		leadgens: map[string]string{},
	}

	graphAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		name, ok := env.leadgens[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported get request","type":"GraphMethodException","code":100}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           id,
			"created_time": time.Now().UTC().Format("2006-01-02T15:04:05-0700"),
			"ad_id":        "ad-e2e",
			"form_id":      "form-e2e",
			"field_data": []map[string]interface{}{
				{"name": "full_name", "values": []string{name}},
				{"name": "phone_number", "values": []string{"+15550001111"}},
				{"name": "email", "values": []string{"e2e@example.com"}},
			},
		})
	}))
	t.Cleanup(graphAPI.Close)

	leadService := service.NewLeadService(env.leads, store.NewLeadCache(rdb.Client, rdb.LeadTTL()), nil, log)
	tokens := auth.NewTokenManager("e2e-secret", "loandesk-e2e", time.Hour)

	hook, err := intake.NewHandler(intake.HandlerOptions{
		AppConfig: cfg,
		Logger:    log,
		Fetcher:   facebook.NewGraphClient(graphAPI.URL, "v18.0", "e2e-access-token", 5*time.Second),
		Creator:   leadService,
		Notifier:  notify.NewNotifier(nil, nil, cfg.Notifications, log),
	})
	require.NoError(t, err)

	resolver := permissions.NewResolver()
	router := api.NewRouter(api.Dependencies{
		Logger:       log,
		Tokens:       tokens,
		Resolver:     resolver,
		Auth:         service.NewAuthService(env.staff, tokens, log),
		Leads:        leadService,
		Staff:        service.NewStaffService(env.staff, resolver, log),
		Branches:     service.NewBranchService(store.NewBranchStore(pg.DB)),
		Banks:        service.NewBankService(store.NewBankStore(pg.DB)),
		FacebookHook: hook,
		Readiness:    map[string]api.Pinger{"postgres": pg, "redis": rdb},
		Version:      "e2e",
	})
	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

// createManager inserts a manager for the main branch and returns its
// credentials.
func (e *environment) createManager(t *testing.T) (email, password string) {
	t.Helper()
	email = fmt.Sprintf("e2e-%s@example.com", uuid.New().String()[:8])
	password = "e2e-Password-123"

	system := models.Actor{StaffID: "e2e", Role: models.RoleOwner}
	staff, err := service.NewStaffService(e.staff, nil, logger.NewNoOpLogger()).Create(context.Background(), system, service.StaffInput{
		Name:     "E2E Manager",
		Email:    email,
		Role:     models.RoleManager,
		BranchID: "main",
		Password: password,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.staff.Delete(context.Background(), staff.ID) })
	return email, password
}

func (e *environment) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (e *environment) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

// ==========================
// 2. Scenarios
// ==========================

func TestE2E_HealthAndReadiness(t *testing.T) {
	env := setupEnvironment(t)

	resp, _ := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestE2E_WebhookHandshake(t *testing.T) {
	env := setupEnvironment(t)

	path := "/webhooks/facebook/?hub.mode=subscribe&hub.verify_token=" + verifyToken + "&hub.challenge=e2e-challenge"
	resp, body := env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "e2e-challenge", string(body))

	path = "/webhooks/facebook/?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=e2e-challenge"
	resp, _ = env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestE2E_LeadFromWebhookVisibleToBranchManager(t *testing.T) {
	env := setupEnvironment(t)

	leadgenID := "e2e-" + uuid.New().String()
	env.leadgens[leadgenID] = "E2E Applicant"

	resp, body := env.do(t, http.MethodPost, "/webhooks/facebook/", "", map[string]interface{}{
		"object": "page",
		"entry": []map[string]interface{}{{
			"id":   "page-e2e",
			"time": time.Now().Unix(),
			"changes": []map[string]interface{}{{
				"field": "leadgen",
				"value": map[string]interface{}{"leadgen_id": leadgenID, "page_id": "page-e2e"},
			}},
		}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	email, password := env.createManager(t)
	token := env.login(t, email, password)

	resp, body = env.do(t, http.MethodGet, "/api/leads?leadSource=Facebook&limit=100", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var listed struct {
		Leads []models.Lead `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))

	var found *models.Lead
	for i := range listed.Leads {
		if id := listed.Leads[i].ProviderLeadID; id != nil && *id == leadgenID {
			found = &listed.Leads[i]
		}
	}
	require.NotNil(t, found, "webhook lead not listed")
	t.Cleanup(func() { _ = env.leads.Delete(context.Background(), found.ID) })

	assert.Equal(t, "FB Lead - "+leadgenID, found.LeadName)
	assert.Equal(t, "E2E Applicant", found.ClientName)
	assert.Equal(t, "+15550001111", found.ContactNumber)
	assert.Equal(t, "Facebook Lead - Ad ID: ad-e2e, Form ID: form-e2e", found.AdditionalInfo)
	require.NotNil(t, found.BranchID)
	assert.Equal(t, "main", *found.BranchID)

	// second read is served from redis
	for i := 0; i < 2; i++ {
		resp, body = env.do(t, http.MethodGet, "/api/leads/"+found.ID, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
}

func TestE2E_PermissionGate(t *testing.T) {
	env := setupEnvironment(t)

	email, password := env.createManager(t)
	token := env.login(t, email, password)

	resp, _ := env.do(t, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/banks", token, map[string]interface{}{"name": "E2E Bank"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/permissions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), permissions.LeadsAssign)
	assert.NotContains(t, string(body), permissions.LeadsDelete)
}
