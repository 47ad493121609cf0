package publish

import (
	"encoding/json"
	"time"
)

// Emitted on every state change of a publication
type Event struct {
	PublicationID string `json:"id"`
	State         State  `json:"state"`

	// Set only for failures
	Stage Stage  `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`

	Signer    string `json:"signer"`
	ContentID string `json:"content_id,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func newEvent(id string, state State) *Event {
	return &Event{
		PublicationID: id,
		State:         state,
		Timestamp:     time.Now().UnixMilli(),
	}
}

func (self *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
