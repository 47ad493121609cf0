package report

import (
	"go.uber.org/atomic"
)

type PublisherErrors struct {
	// Drafts rejected before anything was sent
	Validation atomic.Uint64 `json:"validation"`

	// Failures by stage
	Session atomic.Uint64 `json:"session"`
	Upload  atomic.Uint64 `json:"upload"`
	Mint    atomic.Uint64 `json:"mint"`
	Approve atomic.Uint64 `json:"approve"`
	List    atomic.Uint64 `json:"list"`

	// Transactions whose fate is unknown
	ConfirmationTimeout atomic.Uint64 `json:"confirmation_timeout"`

	// Side effects that didn't affect the result
	JournalSave  atomic.Uint64 `json:"journal_save"`
	EventDropped atomic.Uint64 `json:"event_dropped"`
}

type PublisherState struct {
	PublicationsStarted atomic.Uint64 `json:"publications_started"`
	PublicationsResumed atomic.Uint64 `json:"publications_resumed"`
	PublicationsDone    atomic.Uint64 `json:"publications_done"`
	PublicationsFailed  atomic.Uint64 `json:"publications_failed"`

	// Successful steps
	Uploads   atomic.Uint64 `json:"uploads"`
	Mints     atomic.Uint64 `json:"mints"`
	Approvals atomic.Uint64 `json:"approvals"`
	Listings  atomic.Uint64 `json:"listings"`

	// Token id taken from tokenCount instead of the Transfer event
	TokenIdFromCounter atomic.Uint64 `json:"token_id_from_counter"`

	// Token id of an earlier mint found upon resuming
	MintsRecovered atomic.Uint64 `json:"mints_recovered"`

	LastDoneTimestamp                atomic.Int64   `json:"last_done_timestamp"`
	AveragePublicationsDonePerMinute atomic.Float64 `json:"average_publications_done_per_minute"`
	RecentJournalErrors              atomic.Uint64  `json:"recent_journal_errors"`
}

type PublisherReport struct {
	State  PublisherState  `json:"state"`
	Errors PublisherErrors `json:"errors"`
}
