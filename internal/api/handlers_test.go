package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/shettyvedanth21/Factory-Copilot/internal/analytics"
	"github.com/shettyvedanth21/Factory-Copilot/internal/devices"
	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
	"github.com/shettyvedanth21/Factory-Copilot/internal/reports"
	"github.com/shettyvedanth21/Factory-Copilot/internal/rules"
	"github.com/shettyvedanth21/Factory-Copilot/internal/session"
	"github.com/shettyvedanth21/Factory-Copilot/internal/telemetry"
)

type fixture struct {
	router      chi.Router
	ruleEngine  *countingServer
	dataService *countingServer
}

type countingServer struct {
	*httptest.Server
	calls int
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.calls++
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func newFixture(t *testing.T, ruleHandler, dataHandler http.HandlerFunc) *fixture {
	t.Helper()
	if ruleHandler == nil {
		ruleHandler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[],"total":0}`))
		}
	}
	if dataHandler == nil {
		dataHandler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
		}
	}
	f := &fixture{
		ruleEngine:  newCountingServer(t, ruleHandler),
		dataService: newCountingServer(t, dataHandler),
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	analyticsClient := analytics.NewClient(remote.NewClient("analytics-engine", f.dataService.URL))
	orch := analytics.NewOrchestrator(analyticsClient, 20*time.Millisecond)
	t.Cleanup(orch.Stop)

	h := &Handler{
		Log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Devices:      devices.NewReader(remote.NewClient("device-registry", f.dataService.URL)),
		Telemetry:    telemetry.NewReader(remote.NewClient("telemetry-store", f.dataService.URL)),
		Registry:     rules.NewRegistry(remote.NewClient("rule-engine", f.ruleEngine.URL)),
		Analytics:    analyticsClient,
		Orchestrator: orch,
		Reports:      reports.NewClient(remote.NewClient("export-service", f.dataService.URL)),
		Sessions:     session.NewStore(redisClient, time.Hour),
		Timeout:      2 * time.Second,
	}
	f.router = chi.NewRouter()
	h.RegisterRoutes(f.router)
	return f
}

func (f *fixture) request(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func TestRuleCreateValidationBlocksNetworkCall(t *testing.T) {
	f := newFixture(t, nil, nil)
	body := map[string]any{"draft": rules.NewDraft()}
	resp := f.request(t, http.MethodPost, "/api/v1/rules", body, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	var errResp struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Code != "VALIDATION" || errResp.Field != "name" {
		t.Fatalf("error = %+v", errResp)
	}
	if f.ruleEngine.calls != 0 {
		t.Fatalf("validation failure still reached the rule engine")
	}
}

func TestRuleCreateForwardsTranslatedSubmission(t *testing.T) {
	var received rules.Submission
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`{"data":{"rule_id":"r-1","rule_name":"High Temp","status":"active"}}`))
	}, nil)

	draft := rules.Draft{
		Name:     "High Temp",
		Scope:    rules.ScopeSpecificDevices,
		DeviceID: "D1",
		Clauses:  []rules.Clause{{Metric: "Temperature", Operator: ">", Threshold: "95", Logic: rules.LogicAnd}},
		Channels: []string{"Email"},
	}
	resp := f.request(t, http.MethodPost, "/api/v1/rules", map[string]any{"draft": draft}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if received.Property != "temperature" || received.Condition != ">" || received.Threshold != 95 {
		t.Fatalf("submission = %+v", received)
	}
	if len(received.NotificationChannels) != 1 || received.NotificationChannels[0] != "email" {
		t.Fatalf("channels = %v", received.NotificationChannels)
	}
	if len(received.DeviceIDs) != 1 || received.DeviceIDs[0] != "D1" {
		t.Fatalf("device_ids = %v", received.DeviceIDs)
	}
}

func TestRuleDeleteMissingIsIdempotent(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}, nil)
	resp := f.request(t, http.MethodDelete, "/api/v1/rules/gone", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for already-deleted rule, got %d", resp.Code)
	}
}

func TestUnreachableServiceReturns502(t *testing.T) {
	f := newFixture(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	resp := f.request(t, http.MethodGet, "/api/v1/telemetry/D1", nil, nil)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	var errResp struct {
		Code    string `json:"code"`
		Service string `json:"service"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Code != "SERVICE_UNREACHABLE" || errResp.Service != "telemetry-store" {
		t.Fatalf("error = %+v", errResp)
	}
}

func TestLoginLogout(t *testing.T) {
	f := newFixture(t, nil, nil)
	resp := f.request(t, http.MethodPost, "/api/v1/login", map[string]string{"user_id": "u-1", "name": "Asha", "role": "operator"}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", resp.Code, resp.Body.String())
	}
	var sess session.Session
	_ = json.NewDecoder(resp.Body).Decode(&sess)
	if sess.Token == "" {
		t.Fatalf("no token in login response")
	}

	auth := map[string]string{"Authorization": "Bearer " + sess.Token}
	if resp := f.request(t, http.MethodPost, "/api/v1/logout", nil, auth); resp.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.Code)
	}
	// The token is dead after logout.
	if resp := f.request(t, http.MethodPost, "/api/v1/logout", nil, auth); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.Code)
	}
}

func TestRulePreview(t *testing.T) {
	f := newFixture(t, nil, nil)
	draft := rules.Draft{
		Name:     "Preview",
		Scope:    rules.ScopeAllDevices,
		Clauses:  []rules.Clause{{Metric: "Pressure", Operator: "==", Threshold: "100"}},
		Channels: []string{"SMS"},
	}
	resp := f.request(t, http.MethodPost, "/api/v1/rules/preview", map[string]any{"draft": draft}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("preview failed: %d", resp.Code)
	}
	var sub rules.Submission
	_ = json.NewDecoder(resp.Body).Decode(&sub)
	if sub.Scope != "all_devices" || sub.Condition != "=" {
		t.Fatalf("submission = %+v", sub)
	}
	if len(sub.NotificationChannels) != 1 || sub.NotificationChannels[0] != "email" {
		t.Fatalf("channels = %v", sub.NotificationChannels)
	}
	if f.ruleEngine.calls != 0 {
		t.Fatalf("preview must not touch the rule engine")
	}
}

func TestJobRunAndSnapshot(t *testing.T) {
	f := newFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/run":
			_, _ = w.Write([]byte(`{"job_id":"job-1","status":"pending"}`))
		case "/analytics/status/job-1":
			_, _ = w.Write([]byte(`{"job_id":"job-1","status":"completed"}`))
		case "/analytics/results/job-1":
			_, _ = w.Write([]byte(`{"results":{"is_anomaly":[1,-1],"value":[5,9]}}`))
		default:
			http.NotFound(w, r)
		}
	})

	body := map[string]string{"device_id": "D1", "dataset_key": "ds1", "analysis_type": "anomaly", "model_name": "isolation_forest"}
	resp := f.request(t, http.MethodPost, "/api/v1/analytics/run", body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("run failed: %d %s", resp.Code, resp.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp = f.request(t, http.MethodGet, "/api/v1/analytics/job", nil, nil)
		var snap analytics.Snapshot
		_ = json.NewDecoder(resp.Body).Decode(&snap)
		if snap.Phase == "completed" {
			if len(snap.Points) != 2 || !snap.Points[1].IsAnomaly {
				t.Fatalf("snapshot = %+v", snap)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
