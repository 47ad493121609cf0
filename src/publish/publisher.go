package publish

import (
	"context"
	"strings"
	"sync"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/model"
	"github.com/warp-contracts/publisher/src/utils/monitoring"
	monitor_publisher "github.com/warp-contracts/publisher/src/utils/monitoring/publisher"
	"github.com/warp-contracts/publisher/src/utils/monitoring/report"
	"github.com/warp-contracts/publisher/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/xid"
	"github.com/teivah/onecontext"
)

// Content addressed store for token metadata
type ContentStore interface {
	UploadJSON(ctx context.Context, v any) (ipfs.ContentID, error)
	GatewayURI(cid ipfs.ContentID) string
}

// Authorized access to the deployed contracts
type Chain interface {
	GetContracts(identity eth.ChainIdentity) (*eth.Contracts, error)
	WaitConfirmed(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Mints tokens and lists them on the marketplace.
// Publications are independent, nothing orders publications of the same signer.
type Publisher struct {
	*task.Task

	store   ContentStore
	chain   Chain
	journal Journal
	monitor monitoring.Monitor

	// Pipeline events, nil if nobody listens
	events chan *Event

	mtx      sync.Mutex
	stopping bool
	inflight sync.WaitGroup
}

func NewPublisher(config *config.Config) (self *Publisher) {
	self = new(Publisher)

	self.journal = NewMemoryJournal(config.Journal.MemoryExpiration)
	self.monitor = monitor_publisher.NewMonitor()

	self.Task = task.NewTask(config, "publisher").
		WithSubtaskFunc(self.run)

	return
}

func (self *Publisher) WithContentStore(store ContentStore) *Publisher {
	self.store = store
	return self
}

func (self *Publisher) WithChain(chain Chain) *Publisher {
	self.chain = chain
	return self
}

func (self *Publisher) WithJournal(journal Journal) *Publisher {
	self.journal = journal
	return self
}

func (self *Publisher) WithMonitor(monitor monitoring.Monitor) *Publisher {
	self.monitor = monitor
	return self
}

// Enables pipeline events. Events are dropped when the channel is full.
func (self *Publisher) WithEventChannel(size int) *Publisher {
	self.events = make(chan *Event, size)
	return self
}

func (self *Publisher) Events() chan *Event {
	return self.events
}

func (self *Publisher) Journal() Journal {
	return self.journal
}

// Waits for publications in progress before the task finishes
func (self *Publisher) run() error {
	<-self.StopChannel

	self.mtx.Lock()
	self.stopping = true
	self.mtx.Unlock()

	self.inflight.Wait()
	return nil
}

func (self *Publisher) report() *report.PublisherReport {
	return self.monitor.GetReport().Publisher
}

func (self *Publisher) emit(event *Event) {
	if self.events == nil {
		return
	}

	select {
	case self.events <- event:
	default:
		self.report().Errors.EventDropped.Inc()
	}
}

// Validates, uploads metadata, mints, approves and lists.
// Returns *ValidationError for invalid drafts and *Failure for failures of the later steps.
func (self *Publisher) Publish(ctx context.Context, identity eth.ChainIdentity, draft DraftAsset) (*ListingHandle, error) {
	publication := newPublication(self, xid.New().String(), identity, draft)
	self.report().State.PublicationsStarted.Inc()
	return self.execute(ctx, publication)
}

// Continues from a point returned by a failure. Steps already done are never repeated.
func (self *Publisher) Resume(ctx context.Context, identity eth.ChainIdentity, draft DraftAsset, point ResumePoint) (*ListingHandle, error) {
	publication := newPublication(self, xid.New().String(), identity, draft).
		withResumePoint(point)
	self.report().State.PublicationsResumed.Inc()
	return self.execute(ctx, publication)
}

// Continues a journaled publication
func (self *Publisher) ResumeByID(ctx context.Context, identity eth.ChainIdentity, id string) (*ListingHandle, error) {
	record, err := self.journal.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.State == model.PublicationStateDone {
		return nil, ErrAlreadyListed
	}

	if !strings.EqualFold(record.Signer, identity.Address.Hex()) {
		return nil, ErrSignerMismatch
	}

	point := ResumePoint{
		ContentID: ipfs.ContentID(model.StringFromText(record.ContentID)),
		TokenID:   model.BigIntFromNumeric(record.TokenID),
		Approved:  record.Approved,
	}
	if point.TokenID == nil {
		point.MintTx = journaledTxHashes(record)[StageMint]
	}

	// A mint may have happened, but there's no transaction to find its token in
	if point.TokenID == nil && point.MintTx == (common.Hash{}) &&
		(record.State == model.PublicationStateMinting || (record.Unknown && record.FailedStage.String == string(StageMint))) {
		return nil, ErrMintUnresolved
	}

	draft := DraftAsset{
		ImageRef:    ipfs.ContentID(record.ImageRef),
		Name:        record.Name,
		Description: record.Description,
		Price:       model.DecimalFromNumeric(record.Price),
	}

	publication := newPublication(self, record.ID, identity, draft).
		withResumePoint(point).
		withRecord(record)
	self.report().State.PublicationsResumed.Inc()
	return self.execute(ctx, publication)
}

// Runs the publication, stopping the publisher cancels it
func (self *Publisher) execute(ctx context.Context, publication *Publication) (*ListingHandle, error) {
	self.mtx.Lock()
	if self.stopping {
		self.mtx.Unlock()
		return nil, ErrStopping
	}
	self.inflight.Add(1)
	self.mtx.Unlock()
	defer self.inflight.Done()

	ctx, cancel := onecontext.Merge(ctx, self.Ctx)
	defer cancel()

	return publication.run(ctx)
}
