package models

// MVisualization is a renderer-agnostic chart payload attached to an output.
type MVisualization struct {
	Type  string                 `json:"type"`
	Title string                 `json:"title"`
	Data  map[string]interface{} `json:"data"`
}

// MResponderOutput is what a responder (or stage) returns for one turn.
type MResponderOutput struct {
	Role           Role                   `json:"role"`
	Text           string                 `json:"text"`
	StructuredData map[string]interface{} `json:"structured_data,omitempty"`
	Visualizations []MVisualization       `json:"visualizations,omitempty"`

	// Clarification marks a guidance message asking the user for more detail
	// (no ticker found, no parameters found).
	Clarification bool `json:"-"`
	// Fallback marks output produced by the deterministic path.
	Fallback bool `json:"-"`
}

// MFinalPackage is the terminal artifact of one turn.
type MFinalPackage struct {
	FinalText      string           `json:"final_text"`
	PrimaryRole    *Role            `json:"primary_role"`
	Visualizations []MVisualization `json:"visualizations"`
	Disclaimers    []string         `json:"disclaimers"`
}

// MTurnResult carries the package plus the routing facts hosts like to report.
type MTurnResult struct {
	Package    *MFinalPackage
	Intent     Intent
	Confidence float64
	Roles      []Role
	Outputs    []MResponderOutput
}
