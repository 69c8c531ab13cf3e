// Package analytics submits analysis jobs to the analytics engine, drives
// them to a terminal state by polling, and normalizes result payloads for
// charts and tables.
package analytics

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
)

// Job status values reported by the engine. Transitions are forward-only:
// pending -> running -> completed or failed.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis types the engine supports.
var AnalysisTypes = []string{"anomaly", "prediction", "forecast"}

// Models the engine supports.
var Models = []string{"isolation_forest", "autoencoder", "lstm"}

// JobRequest is the engine's run schema.
type JobRequest struct {
	DeviceID     string `json:"device_id"`
	DatasetKey   string `json:"dataset_key"`
	AnalysisType string `json:"analysis_type"`
	ModelName    string `json:"model_name"`
}

// JobStatus is one poll observation.
type JobStatus struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client is the thin request/response layer under the orchestrator.
type Client struct {
	client *remote.Client
}

func NewClient(client *remote.Client) *Client {
	return &Client{client: client}
}

// dataset entries arrive either as bare strings or as {"key": ...} objects.
type dataset struct {
	Key string
}

func (d *dataset) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Key = s
		return nil
	}
	var obj struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Key = obj.Key
	return nil
}

// ListDatasets returns the dataset keys available for a device.
func (c *Client) ListDatasets(ctx context.Context, deviceID string) ([]string, error) {
	var resp struct {
		Datasets []dataset `json:"datasets"`
	}
	path := "/analytics/datasets"
	if deviceID != "" {
		path += "?device_id=" + url.QueryEscape(deviceID)
	}
	if err := c.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(resp.Datasets))
	for _, d := range resp.Datasets {
		if d.Key != "" {
			keys = append(keys, d.Key)
		}
	}
	return keys, nil
}

// Run submits a job and returns its id.
func (c *Client) Run(ctx context.Context, req JobRequest) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.client.Post(ctx, "/analytics/run", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// Status fetches the current status of a job.
func (c *Client) Status(ctx context.Context, jobID string) (JobStatus, error) {
	var st JobStatus
	if err := c.client.Get(ctx, "/analytics/status/"+url.PathEscape(jobID), &st); err != nil {
		return JobStatus{}, err
	}
	return st, nil
}

// Results fetches the raw result columns of a completed job. The columns are
// returned undecoded; Normalize owns the defensive pass over them.
func (c *Client) Results(ctx context.Context, jobID string) (json.RawMessage, error) {
	var resp struct {
		Results json.RawMessage `json:"results"`
	}
	if err := c.client.Get(ctx, "/analytics/results/"+url.PathEscape(jobID), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
