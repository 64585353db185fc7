package model

import (
	"fmt"
	"strconv"
	"time"
)

// Result is one matching ticker of a screening run.
type Result struct {
	Serial      int     `json:"serial"`
	TickerIndex int     `json:"ticker_index"` // 1-based position in the uploaded list, 0 if absent
	Ticker      string  `json:"ticker"`
	Anchor      float64 `json:"anchor"`
}

// String renders the result line shown to users, e.g. "1. TickerNo:3 - AAA - Open16h: 100".
func (r Result) String() string {
	return fmt.Sprintf("%d. TickerNo:%d - %s - Open16h: %s",
		r.Serial, r.TickerIndex, r.Ticker, strconv.FormatFloat(r.Anchor, 'f', -1, 64))
}

// OutcomeStatus indicates how a ticker left the pipeline.
type OutcomeStatus string

const (
	OutcomeMatched  OutcomeStatus = "MATCHED"
	OutcomeRejected OutcomeStatus = "REJECTED"
	OutcomeSkipped  OutcomeStatus = "SKIPPED"
)

// TickerOutcome is the audit record for one evaluated ticker.
type TickerOutcome struct {
	Ticker string        `json:"ticker"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
	Bars   int           `json:"bars"`
	Anchor float64       `json:"anchor,omitempty"`
}

// Run is the full record of one screening pass.
type Run struct {
	ID            string          `json:"id"`
	ScreeningDate Date            `json:"screening_date"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	Selected      []string        `json:"selected"`
	Active        int             `json:"active_conditions"`
	Results       []Result        `json:"results"`
	Outcomes      []TickerOutcome `json:"outcomes"`
}

// Count returns how many outcomes carry the given status.
func (r *Run) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
