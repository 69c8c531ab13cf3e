// Package reports talks to the export service for report generation and
// download.
package reports

import (
	"context"
	"net/url"

	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
)

// Request describes one export run.
type Request struct {
	DeviceID string `json:"device_id,omitempty"`
	Format   string `json:"format,omitempty"`
	Start    string `json:"start_time,omitempty"`
	End      string `json:"end_time,omitempty"`
}

// Export is the service's view of a generation run.
type Export struct {
	ExportID string `json:"export_id"`
	Status   string `json:"status"`
	FileName string `json:"file_name"`
	Message  string `json:"message"`
}

type Client struct {
	client *remote.Client
}

func NewClient(client *remote.Client) *Client {
	return &Client{client: client}
}

// Generate starts a report export.
func (c *Client) Generate(ctx context.Context, req Request) (Export, error) {
	var exp Export
	if err := c.client.Post(ctx, "/export/generate", req, &exp); err != nil {
		return Export{}, err
	}
	return exp, nil
}

// Status fetches the state of a running export.
func (c *Client) Status(ctx context.Context, exportID string) (Export, error) {
	var exp Export
	if err := c.client.Get(ctx, "/export/status/"+url.PathEscape(exportID), &exp); err != nil {
		return Export{}, err
	}
	return exp, nil
}

// Download returns the finished report as raw bytes plus its content type.
func (c *Client) Download(ctx context.Context, exportID string) ([]byte, string, error) {
	return c.client.GetRaw(ctx, "/export/download/"+url.PathEscape(exportID))
}
