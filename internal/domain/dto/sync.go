package dto

// PollResult summarizes one reconciliation pass over remote quotes.
type PollResult struct {
	Listed   int `json:"listed"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// PullOutcome describes what a single provider-to-local pull did.
type PullOutcome string

const (
	PullInserted PullOutcome = "inserted"
	PullUpdated  PullOutcome = "updated"
	PullSkipped  PullOutcome = "skipped"
)
