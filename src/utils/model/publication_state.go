package model

import (
	"database/sql/driver"
	"fmt"
)

// CREATE TYPE publication_state AS ENUM ('IDLE', 'VALIDATING', 'UPLOADING', 'MINTING', 'APPROVING', 'LISTING', 'DONE', 'FAILED');
type PublicationState string

const (
	PublicationStateIdle       PublicationState = "IDLE"
	PublicationStateValidating PublicationState = "VALIDATING"
	PublicationStateUploading  PublicationState = "UPLOADING"
	PublicationStateMinting    PublicationState = "MINTING"
	PublicationStateApproving  PublicationState = "APPROVING"
	PublicationStateListing    PublicationState = "LISTING"
	PublicationStateDone       PublicationState = "DONE"
	PublicationStateFailed     PublicationState = "FAILED"
)

func (self *PublicationState) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*self = PublicationState(v)
	case []byte:
		*self = PublicationState(v)
	default:
		return fmt.Errorf("unexpected publication state type: %T", value)
	}
	return nil
}

func (self PublicationState) Value() (driver.Value, error) {
	return string(self), nil
}
