package rules

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
)

// Registry is the CRUD facade over the remote rule engine. It holds no state
// beyond the in-flight call: list views re-fetch after every mutation.
type Registry struct {
	client *remote.Client
}

func NewRegistry(client *remote.Client) *Registry {
	return &Registry{client: client}
}

// Filter narrows List. Zero values mean no filtering.
type Filter struct {
	DeviceID string
	Status   string
}

type listResponse struct {
	Data  []Rule `json:"data"`
	Total int    `json:"total"`
}

// List fetches one page of rules. Ordering is engine-defined and not re-sorted
// here.
func (r *Registry) List(ctx context.Context, filter Filter, page, pageSize int) ([]Rule, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	q := url.Values{}
	if filter.DeviceID != "" {
		q.Set("device_id", filter.DeviceID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	q.Set("page", fmt.Sprint(page))
	q.Set("page_size", fmt.Sprint(pageSize))

	var resp listResponse
	if err := r.client.Get(ctx, "/rules?"+q.Encode(), &resp); err != nil {
		return nil, 0, err
	}
	if resp.Data == nil {
		resp.Data = []Rule{}
	}
	return resp.Data, resp.Total, nil
}

// Create persists a new rule and returns the engine's record.
func (r *Registry) Create(ctx context.Context, sub Submission) (Rule, error) {
	var rule Rule
	if err := r.client.Post(ctx, "/rules", sub, &rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// Update applies a partial update. Nil patch fields are omitted from the body,
// never sent as nulls, so the engine keeps its stored values for them.
func (r *Registry) Update(ctx context.Context, ruleID string, patch Patch) (Rule, error) {
	var rule Rule
	if err := r.client.Put(ctx, "/rules/"+url.PathEscape(ruleID), patch, &rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// SetStatus flips a rule between active and paused. Re-applying the current
// status is accepted by the engine, so callers may retry freely.
func (r *Registry) SetStatus(ctx context.Context, ruleID, status string) error {
	body := map[string]string{"status": status}
	return r.client.Patch(ctx, "/rules/"+url.PathEscape(ruleID)+"/status", body, nil)
}

// Delete removes a rule. A 404 comes back as *remote.Error; callers treat it
// as already deleted.
func (r *Registry) Delete(ctx context.Context, ruleID string) error {
	return r.client.Delete(ctx, "/rules/"+url.PathEscape(ruleID))
}
