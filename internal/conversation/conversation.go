// Package conversation tracks per-applicant dialogue state. The registration
// flow is strictly linear; admin search modes reuse the same store so one
// identity holds at most one active conversation.
package conversation

// Step identifies where a conversation currently waits for input.
type Step string

// Registration steps, in order. Submission is terminal: the state record is
// cleared rather than parked in a final step.
const (
	StepFullName   Step = "awaiting_full_name"
	StepPhone      Step = "awaiting_phone"
	StepPlotNumber Step = "awaiting_plot_number"
	StepDocument   Step = "awaiting_document"
)

// Admin search steps: the console waits for one query, then clears.
const (
	StepSearchPlot      Step = "awaiting_search_plot"
	StepSearchPhone     Step = "awaiting_search_phone"
	StepSearchName      Step = "awaiting_search_name"
	StepSearchUniversal Step = "awaiting_search_query"
)

// Registration reports whether the step belongs to the applicant intake flow.
func (s Step) Registration() bool {
	switch s {
	case StepFullName, StepPhone, StepPlotNumber, StepDocument:
		return true
	}
	return false
}

// Search reports whether the step belongs to the admin search console.
func (s Step) Search() bool {
	switch s {
	case StepSearchPlot, StepSearchPhone, StepSearchName, StepSearchUniversal:
		return true
	}
	return false
}

// State is one identity's parked conversation: the awaited step plus the
// fields collected so far. No expiry; an abandoned conversation stays parked
// until the next event or an explicit reset.
type State struct {
	Step       Step   `json:"step"`
	FullName   string `json:"full_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PlotNumber string `json:"plot_number,omitempty"`
}
