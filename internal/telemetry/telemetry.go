// Package telemetry reads live measurements from the telemetry store.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
)

// Reading is one telemetry sample. The store returns them newest first.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Voltage     float64   `json:"voltage"`
	Current     float64   `json:"current"`
	Power       float64   `json:"power"`
	Temperature float64   `json:"temperature"`
}

// Stats is the store's per-device summary.
type Stats struct {
	DeviceID string             `json:"device_id"`
	Count    int                `json:"count"`
	Averages map[string]float64 `json:"averages"`
	Minimums map[string]float64 `json:"minimums"`
	Maximums map[string]float64 `json:"maximums"`
}

type Reader struct {
	client *remote.Client
}

func NewReader(client *remote.Client) *Reader {
	return &Reader{client: client}
}

type readingsPage struct {
	Items    []Reading `json:"items"`
	Total    int       `json:"total"`
	DeviceID string    `json:"device_id"`
}

// Latest returns up to limit readings for the device, newest first as served.
func (r *Reader) Latest(ctx context.Context, deviceID string, limit int) ([]Reading, error) {
	if limit < 1 {
		limit = 50
	}
	path := fmt.Sprintf("/data/telemetry/%s?limit=%d", url.PathEscape(deviceID), limit)
	var page readingsPage
	if err := r.client.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []Reading{}
	}
	return page.Items, nil
}

// DeviceStats returns the store's summary statistics for the device.
func (r *Reader) DeviceStats(ctx context.Context, deviceID string) (Stats, error) {
	var stats Stats
	if err := r.client.Get(ctx, "/data/stats/"+url.PathEscape(deviceID), &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
