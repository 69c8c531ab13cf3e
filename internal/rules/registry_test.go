package rules

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
)

func TestRegistryList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rules" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("device_id") != "D1" || q.Get("status") != "active" {
			t.Fatalf("filter not forwarded: %v", q)
		}
		if q.Get("page") != "2" || q.Get("page_size") != "10" {
			t.Fatalf("pagination not forwarded: %v", q)
		}
		_, _ = w.Write([]byte(`{"data":[{"rule_id":"r-1","rule_name":"High Temp","status":"active"}],"total":21}`))
	}))
	defer server.Close()

	reg := NewRegistry(remote.NewClient("rule-engine", server.URL))
	list, total, err := reg.List(context.Background(), Filter{DeviceID: "D1", Status: "active"}, 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 21 || len(list) != 1 || list[0].RuleID != "r-1" {
		t.Fatalf("unexpected result: total=%d list=%+v", total, list)
	}
}

func TestRegistryCreateUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sub Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if sub.Property != "temperature" {
			t.Fatalf("property = %q", sub.Property)
		}
		_, _ = w.Write([]byte(`{"data":{"rule_id":"r-9","rule_name":"High Temp"}}`))
	}))
	defer server.Close()

	reg := NewRegistry(remote.NewClient("rule-engine", server.URL))
	rule, err := reg.Create(context.Background(), Translate(Draft{
		Name:     "High Temp",
		Scope:    ScopeSpecificDevices,
		DeviceID: "D1",
		Clauses:  []Clause{{Metric: "Temperature", Operator: ">", Threshold: "95"}},
		Channels: []string{"Email"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.RuleID != "r-9" {
		t.Fatalf("rule = %+v", rule)
	}
}

func TestRegistryUpdateOmitsUnsetFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if _, present := raw["threshold"]; present {
			t.Fatalf("unset threshold was sent: %s", body)
		}
		if _, present := raw["rule_name"]; !present {
			t.Fatalf("rule_name missing: %s", body)
		}
		_, _ = w.Write([]byte(`{"rule_id":"r-1","rule_name":"Renamed"}`))
	}))
	defer server.Close()

	name := "Renamed"
	reg := NewRegistry(remote.NewClient("rule-engine", server.URL))
	rule, err := reg.Update(context.Background(), "r-1", Patch{RuleName: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.RuleName != "Renamed" {
		t.Fatalf("rule = %+v", rule)
	}
}

func TestRegistryDeleteMissingRule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"rule not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	reg := NewRegistry(remote.NewClient("rule-engine", server.URL))
	err := reg.Delete(context.Background(), "gone")
	var rerr *remote.Error
	if !errors.As(err, &rerr) || rerr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 remote error, got %v", err)
	}
}

func TestRegistrySetStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPatch || r.URL.Path != "/rules/r-1/status" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != StatusPaused {
			t.Fatalf("status = %q", body["status"])
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	reg := NewRegistry(remote.NewClient("rule-engine", server.URL))
	// Re-applying the same status must not error.
	for i := 0; i < 2; i++ {
		if err := reg.SetStatus(context.Background(), "r-1", StatusPaused); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
