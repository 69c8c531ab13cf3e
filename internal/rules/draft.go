package rules

// Draft transitions are pure: each returns a new Draft and never aliases the
// input's clause or channel slices, so a previous draft stays valid for undo
// and comparison.

// NewDraft returns the editor's starting state: one temperature clause and the
// default channel selection.
func NewDraft() Draft {
	return Draft{
		Scope:    ScopeSpecificDevices,
		Clauses:  []Clause{{Metric: "Temperature", Operator: ">", Threshold: "95", Logic: LogicAnd}},
		Channels: []string{"Email", "In-app"},
	}
}

// AddClause appends a clause with editor defaults. There is no upper bound on
// clause count.
func AddClause(d Draft) Draft {
	out := clone(d)
	out.Clauses = append(out.Clauses, Clause{Metric: "Pressure", Operator: ">", Threshold: "100", Logic: LogicAnd})
	return out
}

// RemoveClause drops the clause at index. A draft always keeps at least one
// clause: removing the sole remaining clause is a no-op, not an error.
func RemoveClause(d Draft, index int) Draft {
	if len(d.Clauses) <= 1 || index < 0 || index >= len(d.Clauses) {
		return d
	}
	out := clone(d)
	out.Clauses = append(out.Clauses[:index], out.Clauses[index+1:]...)
	return out
}

// ClausePatch is a shallow partial update for one clause.
type ClausePatch struct {
	Metric    *string
	Operator  *string
	Threshold *string
	Logic     *Logic
}

// UpdateClause merges patch into the clause at index. Calling it with an
// out-of-range index is a programmer error.
func UpdateClause(d Draft, index int, patch ClausePatch) Draft {
	if index < 0 || index >= len(d.Clauses) {
		panic("rules: UpdateClause index out of range")
	}
	out := clone(d)
	c := &out.Clauses[index]
	if patch.Metric != nil {
		c.Metric = *patch.Metric
	}
	if patch.Operator != nil {
		c.Operator = *patch.Operator
	}
	if patch.Threshold != nil {
		c.Threshold = *patch.Threshold
	}
	if patch.Logic != nil {
		c.Logic = *patch.Logic
	}
	return out
}

// ToggleChannel adds the channel to the selection if absent, removes it if
// present.
func ToggleChannel(d Draft, channel string) Draft {
	out := clone(d)
	for i, c := range out.Channels {
		if c == channel {
			out.Channels = append(out.Channels[:i], out.Channels[i+1:]...)
			return out
		}
	}
	out.Channels = append(out.Channels, channel)
	return out
}

func clone(d Draft) Draft {
	out := d
	out.Clauses = make([]Clause, len(d.Clauses))
	copy(out.Clauses, d.Clauses)
	out.Channels = make([]string, len(d.Channels))
	copy(out.Channels, d.Channels)
	return out
}
