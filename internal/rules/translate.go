package rules

import (
	"math"
	"strconv"
	"strings"
)

// Cooldown applied to every submission. Not yet user-configurable.
const defaultCooldownMinutes = 15

// channelAllowList maps editor channel labels to the enums the rule engine
// accepts. Labels without an entry (In-app, SMS, Webhook) are dropped at
// translation until the notifier supports them.
var channelAllowList = map[string]string{
	"Email":    "email",
	"WhatsApp": "whatsapp",
	"Telegram": "telegram",
}

// Translate converts a draft into the rule engine's schema. It is total and
// deterministic: every draft yields a submission, with defensive defaults in
// place of rejections.
//
// Known limitations, preserved deliberately: only the first clause is
// forwarded (the engine stores a single property/condition/threshold triple,
// so additional AND/OR clauses are editor-only), and the Device Type scope's
// category id is not forwarded (the engine has no field for it, so such rules
// submit as selected_devices with no device list).
func Translate(d Draft) Submission {
	first := Clause{Metric: "Temperature", Operator: ">"}
	if len(d.Clauses) > 0 {
		first = d.Clauses[0]
	}

	scope := "selected_devices"
	if d.Scope == ScopeAllDevices {
		scope = "all_devices"
	}

	deviceIDs := []string{}
	if d.Scope == ScopeSpecificDevices && d.DeviceID != "" {
		deviceIDs = []string{d.DeviceID}
	}

	channels := make([]string, 0, len(d.Channels))
	for _, label := range d.Channels {
		if mapped, ok := channelAllowList[label]; ok {
			channels = append(channels, mapped)
		}
	}
	// The engine requires at least one channel.
	if len(channels) == 0 {
		channels = append(channels, "email")
	}

	condition := first.Operator
	if condition == "==" {
		condition = "="
	}

	return Submission{
		RuleName:             d.Name,
		Description:          "Automation rule for " + d.Name,
		Scope:                scope,
		Property:             strings.ToLower(first.Metric),
		Condition:            condition,
		Threshold:            parseThreshold(first.Threshold),
		NotificationChannels: channels,
		CooldownMinutes:      defaultCooldownMinutes,
		DeviceIDs:            deviceIDs,
	}
}

// AsPatch lifts a full submission into a patch touching every field, for
// whole-rule updates through the registry.
func (s Submission) AsPatch() Patch {
	return Patch{
		RuleName:             &s.RuleName,
		Description:          &s.Description,
		Scope:                &s.Scope,
		Property:             &s.Property,
		Condition:            &s.Condition,
		Threshold:            &s.Threshold,
		NotificationChannels: &s.NotificationChannels,
		CooldownMinutes:      &s.CooldownMinutes,
		DeviceIDs:            &s.DeviceIDs,
	}
}

// parseThreshold coerces the clause's raw text to a finite number. Anything
// unparseable becomes 0.0 rather than an error; the editor shows the raw text,
// so a typo is visible there instead of blocking submission.
func parseThreshold(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	return v
}
