package reply

// Outcome is the terminal state of one comment's reply lifecycle within a
// run. A comment that exhausts the dedup fallbacks has no hash recorded and
// becomes eligible again on a future invocation.
type Outcome string

const (
	OutcomeSent        Outcome = "sent"
	OutcomeDraftedOnly Outcome = "drafted_only"
	OutcomeDryRunOnly  Outcome = "dry_run_only"
	OutcomeExhausted   Outcome = "exhausted"
)
