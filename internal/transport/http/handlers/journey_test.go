package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"appraisal/internal/app/server"
	"appraisal/internal/domain/auth"
	"appraisal/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		Environment:        "test",
		SeedAdminName:      "Director-General",
		SeedAdminStaffID:   "DG001",
		SeedAdminEmail:     "dg@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MigrationsDir:      "../../../../migrations",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		SessionTTL:         time.Hour,
		ReminderInterval:   time.Hour,
	}
}

func TestSelfAssessmentJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	dgToken := login(t, client, ts.URL, cfg.SeedAdminEmail, auth.RoleDirectorGeneral, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	managerEmail := fmt.Sprintf("manager-%d@example.com", suffix)
	managerID := createUser(t, client, ts.URL, dgToken, map[string]any{
		"name":     "Unit Manager",
		"staffId":  fmt.Sprintf("MGR%d", suffix),
		"email":    managerEmail,
		"role":     auth.RoleUnitHead,
		"division": "Research",
		"password": "Manager123!",
	})

	staffEmail := fmt.Sprintf("staff-%d@example.com", suffix)
	staffID := createUser(t, client, ts.URL, dgToken, map[string]any{
		"name":      "Staff Tester",
		"staffId":   fmt.Sprintf("STF%d", suffix),
		"email":     staffEmail,
		"role":      auth.RoleStaffMember,
		"managerId": managerID,
		"division":  "Research",
		"password":  "Staff123!",
	})

	staffToken := login(t, client, ts.URL, staffEmail, auth.RoleStaffMember, "Staff123!")

	resp := postJSON(t, client, ts.URL+"/api/v1/appraisals", staffToken, map[string]any{
		"employeeId":  staffID,
		"appraiserId": managerID,
		"periodStart": "2026-01-01",
		"periodEnd":   "2026-12-31",
		"createdBy":   "appraisee",
	})
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode appraisal: %v", err)
	}
	appraisalID, _ := created["id"].(string)
	if appraisalID == "" {
		t.Fatal("expected appraisal id")
	}
	version := int(created["version"].(float64))

	status, version := transition(t, client, ts.URL, staffToken, appraisalID, "pending-review", version)
	if status != "pending-review" {
		t.Fatalf("expected pending-review, got %s", status)
	}

	managerToken := login(t, client, ts.URL, managerEmail, auth.RoleUnitHead, "Manager123!")

	status, version = transition(t, client, ts.URL, managerToken, appraisalID, "submitted", version)
	if status != "submitted" {
		t.Fatalf("expected submitted, got %s", status)
	}
	status, version = transition(t, client, ts.URL, managerToken, appraisalID, "reviewed", version)
	if status != "reviewed" {
		t.Fatalf("expected reviewed, got %s", status)
	}
	status, _ = transition(t, client, ts.URL, managerToken, appraisalID, "closed", version)
	if status != "closed" {
		t.Fatalf("expected closed, got %s", status)
	}

	unread := unreadCount(t, client, ts.URL, staffToken)
	if unread == 0 {
		t.Fatal("expected employee notifications after review")
	}

	resp = getJSON(t, client, ts.URL+"/api/v1/reports/summary", dgToken)
	var summary map[string]any
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	counts, _ := summary["statusCounts"].(map[string]any)
	if counts["closed"] == nil {
		t.Fatal("expected closed appraisals in summary")
	}
}

func TestAccessRequestJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	applicantEmail := fmt.Sprintf("applicant-%d@example.com", time.Now().UnixNano())
	resp := postJSON(t, client, ts.URL+"/api/v1/access-requests", "", map[string]any{
		"name":     "New Applicant",
		"email":    applicantEmail,
		"role":     auth.RoleStaffMember,
		"division": "Research",
	})
	var request map[string]any
	if err := json.Unmarshal(resp.Data, &request); err != nil {
		t.Fatalf("failed to decode access request: %v", err)
	}
	requestID, _ := request["id"].(string)
	if requestID == "" {
		t.Fatal("expected access request id")
	}

	dgToken := login(t, client, ts.URL, cfg.SeedAdminEmail, auth.RoleDirectorGeneral, cfg.SeedAdminPassword)
	resp = postJSON(t, client, ts.URL+"/api/v1/access-requests/"+requestID+"/approve", dgToken, map[string]any{
		"password": "Welcome123!",
	})
	var approval struct {
		Request map[string]any `json:"request"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(resp.Data, &approval); err != nil {
		t.Fatalf("failed to decode approval: %v", err)
	}
	if approval.Request["status"] != "approved" {
		t.Fatalf("expected approved, got %v", approval.Request["status"])
	}
	if approval.User["id"] == "" {
		t.Fatal("expected provisioned user")
	}

	// The provisioned account can sign in straight away.
	login(t, client, ts.URL, applicantEmail, auth.RoleStaffMember, "Welcome123!")
}

func TestRateLimitSeparatesSessionsOnSharedIP(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	cfg.RateLimitPerMinute = 5
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	dgToken := login(t, client, ts.URL, cfg.SeedAdminEmail, auth.RoleDirectorGeneral, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	staffEmail := fmt.Sprintf("limited-%d@example.com", suffix)
	createUser(t, client, ts.URL, dgToken, map[string]any{
		"name":     "Limited Tester",
		"staffId":  fmt.Sprintf("LIM%d", suffix),
		"email":    staffEmail,
		"role":     auth.RoleStaffMember,
		"division": "Research",
		"password": "Limited123!",
	})
	staffToken := login(t, client, ts.URL, staffEmail, auth.RoleStaffMember, "Limited123!")

	getStatus := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/notifications/unread-count", nil)
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode
	}

	// Both sessions arrive from the test server's loopback address, so a
	// shared IP bucket would let one user's burst starve the other.
	var last int
	for i := 0; i < 6; i++ {
		last = getStatus(staffToken)
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected staff session to exhaust its own bucket, got %d", last)
	}
	if code := getStatus(dgToken); code != http.StatusOK {
		t.Fatalf("admin session behind the same IP got %d, want 200", code)
	}
}

func login(t *testing.T, client *http.Client, baseURL, identifier, role, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"identifier": identifier,
		"role":       role,
		"password":   password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createUser(t *testing.T, client *http.Client, baseURL, token string, body map[string]any) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/users", token, body)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode user response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected user id")
	}
	return id
}

func transition(t *testing.T, client *http.Client, baseURL, token, appraisalID, to string, version int) (string, int) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/appraisals/"+appraisalID+"/transition", token, map[string]any{
		"to":      to,
		"version": version,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode transition response: %v", err)
	}
	status, _ := payload["status"].(string)
	next, _ := payload["version"].(float64)
	return status, int(next)
}

func unreadCount(t *testing.T, client *http.Client, baseURL, token string) int {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/notifications/unread-count", token)
	var payload map[string]int
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode unread count: %v", err)
	}
	return payload["unread"]
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}
