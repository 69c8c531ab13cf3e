// Package rules holds the condition model for alerting rules: the editable
// draft the console mutates, the translator that turns a draft into the rule
// engine's schema, and the registry client that persists it.
package rules

import (
	"strings"
	"time"
)

// Scope is the device-targeting breadth of a rule.
type Scope string

const (
	ScopeAllDevices      Scope = "All Machines"
	ScopeSpecificDevices Scope = "Specific Devices"
	ScopeDeviceType      Scope = "Device Type"
)

// Logic joins a clause to its predecessor. The first clause of a draft has no
// predecessor; its Logic is carried but ignored by the translator.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Rule status values on the wire.
const (
	StatusActive = "active"
	StatusPaused = "paused"
)

// Metrics the rule editor offers, in display order.
var Metrics = []string{
	"Temperature",
	"Pressure",
	"Efficiency",
	"Vibration",
	"Power",
	"Humidity",
	"Flow Rate",
	"Voltage",
	"Current",
	"Noise Level",
	"Cycle Time",
}

// MetricUnits annotates each metric with its display unit.
var MetricUnits = map[string]string{
	"Temperature": "°C",
	"Pressure":    "psi",
	"Efficiency":  "%",
	"Vibration":   "mm/s",
	"Power":       "kW",
	"Humidity":    "%",
	"Flow Rate":   "L/min",
	"Voltage":     "V",
	"Current":     "A",
	"Noise Level": "dB",
	"Cycle Time":  "s",
}

// Operators the editor offers. The engine spells equality "=", see Translate.
var Operators = []string{">", "<", "==", ">=", "<="}

// Channels the editor offers. Only the entries of channelAllowList survive
// translation; the rest are display-only until the notifier grows support.
var Channels = []string{"Email", "In-app", "SMS", "WhatsApp", "Telegram", "Webhook"}

// Clause is one atomic comparison. Threshold stays a string until translation
// so the editor can round-trip whatever the user typed.
type Clause struct {
	Metric    string `json:"metric"`
	Operator  string `json:"operator"`
	Threshold string `json:"threshold"`
	Logic     Logic  `json:"logic"`
}

// Draft is the editable aggregate the rule editor works on. DeviceID is
// meaningful for ScopeSpecificDevices, DeviceType for ScopeDeviceType.
type Draft struct {
	Name       string   `json:"name"`
	Scope      Scope    `json:"scope"`
	DeviceID   string   `json:"deviceId"`
	DeviceType string   `json:"deviceType"`
	Clauses    []Clause `json:"clauses"`
	Channels   []string `json:"channels"`
}

// Submission is the rule engine's create/update schema.
type Submission struct {
	RuleName             string   `json:"rule_name"`
	Description          string   `json:"description"`
	Scope                string   `json:"scope"`
	Property             string   `json:"property"`
	Condition            string   `json:"condition"`
	Threshold            float64  `json:"threshold"`
	NotificationChannels []string `json:"notification_channels"`
	CooldownMinutes      int      `json:"cooldown_minutes"`
	DeviceIDs            []string `json:"device_ids"`
}

// Patch is a partial update. Nil fields are omitted from the request body so
// the engine keeps its stored values; the client never sends explicit nulls.
type Patch struct {
	RuleName             *string   `json:"rule_name,omitempty"`
	Description          *string   `json:"description,omitempty"`
	Scope                *string   `json:"scope,omitempty"`
	Property             *string   `json:"property,omitempty"`
	Condition            *string   `json:"condition,omitempty"`
	Threshold            *float64  `json:"threshold,omitempty"`
	NotificationChannels *[]string `json:"notification_channels,omitempty"`
	CooldownMinutes      *int      `json:"cooldown_minutes,omitempty"`
	DeviceIDs            *[]string `json:"device_ids,omitempty"`
}

// Rule is a persisted rule as the engine returns it.
type Rule struct {
	RuleID               string    `json:"rule_id"`
	RuleName             string    `json:"rule_name"`
	Description          string    `json:"description"`
	Scope                string    `json:"scope"`
	Property             string    `json:"property"`
	Condition            string    `json:"condition"`
	Threshold            float64   `json:"threshold"`
	NotificationChannels []string  `json:"notification_channels"`
	CooldownMinutes      int       `json:"cooldown_minutes"`
	DeviceIDs            []string  `json:"device_ids"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

// ValidationError blocks a submission before any network call is made.
type ValidationError struct {
	Field   string
	Problem string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Problem
}

// Validate checks the draft for problems the engine would reject outright.
func Validate(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Problem: "rule name is required"}
	}
	return nil
}
