package publish

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/jackc/pgtype"
	"github.com/sirupsen/logrus"
)

// Max time for saving progress after the caller's context got cancelled
const journalTimeout = 10 * time.Second

// One run of the pipeline. Each invocation creates its own, it's never shared.
type Publication struct {
	ID string

	publisher *Publisher
	log       *logrus.Entry

	identity eth.ChainIdentity
	draft    DraftAsset
	point    ResumePoint
	resumed  bool

	state       State
	contracts   *eth.Contracts
	metadataURI string
	itemID      *big.Int
	txHashes    map[Stage]common.Hash
	lastTx      common.Hash

	// Journal record, nil until the draft is validated
	record *model.Publication
}

func newPublication(publisher *Publisher, id string, identity eth.ChainIdentity, draft DraftAsset) (self *Publication) {
	self = new(Publication)
	self.ID = id
	self.publisher = publisher
	self.identity = identity
	self.draft = draft
	self.state = StateIdle
	self.txHashes = make(map[Stage]common.Hash)
	self.log = publisher.Log.WithField("id", id)
	return
}

// Continue from durable progress
func (self *Publication) withResumePoint(point ResumePoint) *Publication {
	self.point = point
	self.resumed = true
	return self
}

// Continue a journaled publication
func (self *Publication) withRecord(record *model.Publication) *Publication {
	self.record = record

	for stage, hash := range journaledTxHashes(record) {
		self.txHashes[stage] = hash
	}
	return self
}

// Transactions sent so far, by stage
func journaledTxHashes(record *model.Publication) map[Stage]common.Hash {
	out := make(map[Stage]common.Hash)
	if record.TxHashes.Status != pgtype.Present {
		return out
	}

	var hashes map[string]string
	err := record.TxHashes.AssignTo(&hashes)
	if err != nil {
		return out
	}
	for stage, hash := range hashes {
		out[Stage(stage)] = common.HexToHash(hash)
	}
	return out
}

func (self *Publication) State() State {
	return self.state
}

// Executes all steps that aren't done yet, in order
func (self *Publication) run(ctx context.Context) (handle *ListingHandle, err error) {
	self.transition(ctx, StateValidating, nil)

	err = self.draft.Validate()
	if err != nil {
		self.log.WithError(err).Info("Draft rejected")
		self.publisher.report().Errors.Validation.Inc()
		self.publisher.report().State.PublicationsFailed.Inc()
		self.transition(ctx, StateFailed, &Failure{PublicationID: self.ID, Stage: StageValidate, Cause: err})
		return nil, err
	}

	if self.record == nil {
		self.record = self.newRecord()
	}

	self.contracts, err = self.publisher.chain.GetContracts(self.identity)
	if err != nil {
		return nil, self.fail(ctx, StageSession, err)
	}

	if self.point.ContentID != "" {
		self.metadataURI = self.publisher.store.GatewayURI(self.point.ContentID)
	}

	if self.point.ContentID == "" && self.point.TokenID == nil {
		err = self.upload(ctx)
		if err != nil {
			return
		}
	}

	if self.point.TokenID == nil && self.point.MintTx != (common.Hash{}) {
		err = self.recoverMint(ctx)
		if err != nil {
			return
		}
	}

	if self.point.TokenID == nil {
		err = self.mint(ctx)
		if err != nil {
			return
		}
	}

	if !self.point.Approved {
		err = self.approve(ctx)
		if err != nil {
			return
		}
	}

	return self.list(ctx)
}

func (self *Publication) newRecord() *model.Publication {
	record := &model.Publication{
		ID:          self.ID,
		Signer:      self.identity.Address.Hex(),
		Name:        self.draft.Name,
		Description: self.draft.Description,
		ImageRef:    string(self.draft.ImageRef),
		Price:       model.NumericFromDecimal(self.draft.Price),
		ContentID:   model.TextFromString(string(self.point.ContentID)),
		TokenID:     model.NumericFromBigInt(self.point.TokenID),
		Approved:    self.point.Approved,
		State:       model.PublicationState(self.state),
	}
	if self.identity.ChainID != nil {
		record.ChainID = self.identity.ChainID.Int64()
	}
	return record
}

// Uploads token metadata
func (self *Publication) upload(ctx context.Context) (err error) {
	self.transition(ctx, StateUploading, nil)

	if err = ctx.Err(); err != nil {
		return self.fail(ctx, StageUpload, err)
	}

	metadata := self.draft.Metadata(self.publisher.store.GatewayURI)
	cid, err := self.publisher.store.UploadJSON(ctx, metadata)
	if err != nil {
		return self.fail(ctx, StageUpload, err)
	}

	self.point.ContentID = cid
	self.metadataURI = self.publisher.store.GatewayURI(cid)
	self.record.ContentID = model.TextFromString(string(cid))
	self.record.MetadataURI = model.TextFromString(self.metadataURI)
	self.publisher.report().State.Uploads.Inc()

	self.log.WithField("cid", cid).Info("Metadata uploaded")
	return nil
}

func (self *Publication) mint(ctx context.Context) (err error) {
	if self.state != StateMinting {
		self.transition(ctx, StateMinting, nil)
	}

	if err = ctx.Err(); err != nil {
		return self.fail(ctx, StageMint, err)
	}

	tx, err := self.contracts.NFT.Mint(ctx, self.metadataURI)
	if err != nil {
		return self.fail(ctx, StageMint, transactionFailed(err))
	}
	self.sent(ctx, StageMint, tx)

	receipt, err := self.publisher.chain.WaitConfirmed(ctx, tx)
	if err != nil {
		return self.fail(ctx, StageMint, transactionFailed(err))
	}

	tokenID, err := self.tokenID(ctx, receipt)
	if err != nil {
		return self.fail(ctx, StageMint, fmt.Errorf("%w: %w", ErrTokenIdUnknown, err))
	}

	self.point.TokenID = tokenID
	self.record.TokenID = model.NumericFromBigInt(tokenID)
	self.publisher.report().State.Mints.Inc()

	self.log.WithField("token_id", tokenID).Info("Token minted")
	return nil
}

// Finds the token minted by a transaction sent before. Minting again would create a second token.
func (self *Publication) recoverMint(ctx context.Context) (err error) {
	self.transition(ctx, StateMinting, nil)

	log := self.log.WithField("tx", self.point.MintTx.Hex())
	self.txHashes[StageMint] = self.point.MintTx

	receipt, err := self.publisher.chain.WaitMined(ctx, self.point.MintTx)
	if errors.Is(err, eth.ErrTransactionReverted) {
		log.Info("Previous mint reverted, minting again")
		self.point.MintTx = common.Hash{}
		delete(self.txHashes, StageMint)
		return nil
	}
	if err != nil {
		return self.fail(ctx, StageMint, transactionFailed(err))
	}

	// Only the event identifies the token, the counter has moved on since
	tokenID, err := self.contracts.NFT.MintedTokenID(receipt, self.identity.Address)
	if err != nil {
		return self.fail(ctx, StageMint, fmt.Errorf("%w: %w", ErrTokenIdUnknown, err))
	}

	self.point.TokenID = tokenID
	self.point.MintTx = common.Hash{}
	self.record.TokenID = model.NumericFromBigInt(tokenID)
	self.publisher.report().State.MintsRecovered.Inc()

	log.WithField("token_id", tokenID).Info("Token of a previous mint recovered")
	return nil
}

// Id of the freshly minted token
func (self *Publication) tokenID(ctx context.Context, receipt *types.Receipt) (*big.Int, error) {
	if self.publisher.Config.Publisher.TokenIdSource != config.TokenIdSourceCounter {
		tokenID, err := self.contracts.NFT.MintedTokenID(receipt, self.identity.Address)
		if err == nil {
			return tokenID, nil
		}
		self.log.WithError(err).Warn("Token id not found in the mint receipt, falling back to tokenCount")
	}

	// Correct only if nobody else minted in the meantime
	self.publisher.report().State.TokenIdFromCounter.Inc()
	return self.contracts.NFT.TokenCount(ctx)
}

// Lets the marketplace transfer the token
func (self *Publication) approve(ctx context.Context) (err error) {
	self.transition(ctx, StateApproving, nil)

	operator := self.contracts.Marketplace.Address()

	if self.resumed {
		approved, err := self.contracts.NFT.IsApprovedForAll(ctx, self.identity.Address, operator)
		if err != nil {
			self.log.WithError(err).Warn("Failed to check approval, approving again")
		} else if approved {
			self.log.Info("Marketplace already approved")
			self.approved()
			return nil
		}
	}

	if err = ctx.Err(); err != nil {
		return self.fail(ctx, StageApprove, err)
	}

	tx, err := self.contracts.NFT.SetApprovalForAll(ctx, operator, true)
	if err != nil {
		return self.fail(ctx, StageApprove, transactionFailed(err))
	}
	self.sent(ctx, StageApprove, tx)

	_, err = self.publisher.chain.WaitConfirmed(ctx, tx)
	if err != nil {
		return self.fail(ctx, StageApprove, transactionFailed(err))
	}

	self.approved()
	self.log.Info("Marketplace approved")
	return nil
}

func (self *Publication) approved() {
	self.point.Approved = true
	self.record.Approved = true
	self.publisher.report().State.Approvals.Inc()
}

// Puts the token up for sale
func (self *Publication) list(ctx context.Context) (handle *ListingHandle, err error) {
	self.transition(ctx, StateListing, nil)

	priceWei, err := eth.EtherToWei(self.draft.Price)
	if err != nil {
		return nil, self.fail(ctx, StageList, err)
	}

	if err = ctx.Err(); err != nil {
		return nil, self.fail(ctx, StageList, err)
	}

	nft := self.contracts.NFT.Address()
	tx, err := self.contracts.Marketplace.MakeItem(ctx, nft, self.point.TokenID, priceWei)
	if err != nil {
		return nil, self.fail(ctx, StageList, transactionFailed(err))
	}
	self.sent(ctx, StageList, tx)

	receipt, err := self.publisher.chain.WaitConfirmed(ctx, tx)
	if err != nil {
		return nil, self.fail(ctx, StageList, transactionFailed(err))
	}

	self.itemID, err = self.contracts.Marketplace.ListedItemID(receipt)
	if err != nil {
		self.log.WithError(err).Debug("Marketplace item id not found")
	}
	self.record.ItemID = model.NumericFromBigInt(self.itemID)

	report := self.publisher.report()
	report.State.Listings.Inc()
	report.State.PublicationsDone.Inc()
	report.State.LastDoneTimestamp.Store(time.Now().Unix())

	self.transition(ctx, StateDone, nil)

	txHashes := make(map[Stage]common.Hash, len(self.txHashes))
	for stage, hash := range self.txHashes {
		txHashes[stage] = hash
	}

	return &ListingHandle{
		PublicationID: self.ID,
		NFTContract:   nft,
		TokenID:       new(big.Int).Set(self.point.TokenID),
		Price:         self.draft.Price,
		PriceWei:      priceWei,
		ItemID:        self.itemID,
		ContentID:     self.point.ContentID,
		MetadataURI:   self.metadataURI,
		TxHashes:      txHashes,
	}, nil
}

// Remembers the transaction before waiting for it, so an unknown outcome can be investigated
func (self *Publication) sent(ctx context.Context, stage Stage, tx *types.Transaction) {
	self.lastTx = tx.Hash()
	self.txHashes[stage] = tx.Hash()

	hashes := make(map[string]string, len(self.txHashes))
	for s, hash := range self.txHashes {
		hashes[string(s)] = hash.Hex()
	}
	err := self.record.TxHashes.Set(hashes)
	if err != nil {
		self.log.WithError(err).Warn("Failed to encode transaction hashes")
	}

	self.log.WithField("stage", stage).WithField("tx", tx.Hash().Hex()).Info("Transaction sent")
	self.save(ctx)
}

// Stops the pipeline. Durable progress is carried by the returned failure.
func (self *Publication) fail(ctx context.Context, stage Stage, cause error) error {
	failure := &Failure{
		PublicationID: self.ID,
		Stage:         stage,
		Cause:         cause,
		ContentID:     self.point.ContentID,
		TokenID:       self.point.TokenID,
		Approved:      self.point.Approved,
	}
	if stage == StageMint || stage == StageApprove || stage == StageList {
		failure.TxHash = self.txHashes[stage]
	}

	report := self.publisher.report()
	report.State.PublicationsFailed.Inc()
	switch stage {
	case StageSession:
		report.Errors.Session.Inc()
	case StageUpload:
		report.Errors.Upload.Inc()
	case StageMint:
		report.Errors.Mint.Inc()
	case StageApprove:
		report.Errors.Approve.Inc()
	case StageList:
		report.Errors.List.Inc()
	}
	if failure.Unknown() {
		report.Errors.ConfirmationTimeout.Inc()
	}

	self.record.FailedStage = model.TextFromString(string(stage))
	self.record.Error = model.TextFromString(cause.Error())
	self.record.Unknown = failure.Unknown()

	self.log.WithError(cause).WithField("stage", stage).Error("Publication failed")
	self.transition(ctx, StateFailed, failure)
	return failure
}

// Moves to the next state, journals and announces it
func (self *Publication) transition(ctx context.Context, next State, failure *Failure) {
	if !self.state.CanTransitionTo(next) {
		self.log.WithField("from", self.state).WithField("to", next).Error("Unexpected state transition")
	}
	self.log.WithField("from", self.state).WithField("to", next).Debug("State changed")
	self.state = next

	event := newEvent(self.ID, next)
	event.Signer = self.identity.Address.Hex()
	event.ContentID = string(self.point.ContentID)
	if self.point.TokenID != nil {
		event.TokenID = self.point.TokenID.String()
	}
	if failure != nil {
		event.Stage = failure.Stage
		event.Error = failure.Cause.Error()
		if failure.TxHash != (common.Hash{}) {
			event.TxHash = failure.TxHash.Hex()
		}
	}
	self.publisher.emit(event)

	if self.record != nil {
		self.record.State = model.PublicationState(next)
		if next != StateFailed {
			self.record.FailedStage = model.TextFromString("")
			self.record.Error = model.TextFromString("")
			self.record.Unknown = false
		}
		self.save(ctx)
	}
}

// Journal failures are only reported, they never change the publication's outcome
func (self *Publication) save(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	err := self.publisher.journal.Save(ctx, self.record)
	if err != nil {
		self.log.WithError(err).Warn("Failed to save publication progress")
		self.publisher.report().Errors.JournalSave.Inc()
	}
}
