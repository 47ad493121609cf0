package publish

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/model"
	monitor_publisher "github.com/warp-contracts/publisher/src/utils/monitoring/publisher"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PublisherTestSuite struct {
	suite.Suite

	config      *config.Config
	log         *callLog
	store       *fakeStore
	nft         *fakeNFT
	marketplace *fakeMarketplace
	chain       *fakeChain
	journal     *failingJournal
	monitor     *monitor_publisher.Monitor
	identity    eth.ChainIdentity
	publisher   *Publisher
}

func TestPublisherTestSuite(t *testing.T) {
	suite.Run(t, new(PublisherTestSuite))
}

func (s *PublisherTestSuite) SetupTest() {
	s.config = config.Default()
	s.log = new(callLog)
	s.store = &fakeStore{log: s.log, cid: "cidABC"}
	s.nft = &fakeNFT{log: s.log, tokenID: big.NewInt(7), counter: big.NewInt(7)}
	s.marketplace = &fakeMarketplace{log: s.log, itemID: big.NewInt(1)}
	s.chain = &fakeChain{
		log: s.log,
		contracts: &eth.Contracts{
			NFT:         s.nft,
			Marketplace: s.marketplace,
		},
		waitErr:   make(map[uint64]error),
		confirmed: make(map[uint64]int),
		minedErr:  make(map[common.Hash]error),
	}
	s.journal = &failingJournal{MemoryJournal: NewMemoryJournal(0)}
	s.monitor = monitor_publisher.NewMonitor()
	s.identity = eth.ChainIdentity{Address: signerAddress, ChainID: big.NewInt(31337)}

	s.publisher = NewPublisher(s.config).
		WithContentStore(s.store).
		WithChain(s.chain).
		WithJournal(s.journal).
		WithMonitor(s.monitor).
		WithEventChannel(100)

	s.Require().NoError(s.publisher.Start())
}

func (s *PublisherTestSuite) TearDownTest() {
	s.publisher.StopWait()
}

func (s *PublisherTestSuite) draft() DraftAsset {
	return DraftAsset{
		ImageRef:    "cid123",
		Name:        "Art1",
		Description: "desc",
		Price:       decimal.RequireFromString("0.5"),
	}
}

func (s *PublisherTestSuite) events() (out []*Event) {
	for {
		select {
		case event := <-s.publisher.Events():
			out = append(out, event)
		default:
			return
		}
	}
}

func (s *PublisherTestSuite) states() (out []State) {
	for _, event := range s.events() {
		out = append(out, event.State)
	}
	return
}

func (s *PublisherTestSuite) failure(err error) *Failure {
	var failure *Failure
	s.Require().ErrorAs(err, &failure)
	return failure
}

func (s *PublisherTestSuite) TestPublish() {
	handle, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().NoError(err)

	s.Require().Equal(nftAddress, handle.NFTContract)
	s.Require().Equal(int64(7), handle.TokenID.Int64())
	s.Require().True(handle.Price.Equal(decimal.RequireFromString("0.5")))
	s.Require().Equal("500000000000000000", handle.PriceWei.String())
	s.Require().Equal(ipfs.ContentID("cidABC"), handle.ContentID)
	s.Require().Equal("https://ipfs.infura.io/ipfs/cidABC", handle.MetadataURI)
	s.Require().Equal(int64(1), handle.ItemID.Int64())
	s.Require().Len(handle.TxHashes, 3)
	s.Require().Equal(TokenHandle{Contract: nftAddress, TokenID: big.NewInt(7)}, handle.Token())

	// Strictly sequential
	s.Require().Equal([]string{"upload", "mint", "wait", "approve", "wait", "makeItem", "wait"}, s.log.all())

	// Metadata
	s.Require().Equal([]Metadata{{
		Image:       "https://ipfs.infura.io/ipfs/cid123",
		Price:       "0.5",
		Name:        "Art1",
		Description: "desc",
	}}, s.store.uploaded)
	s.Require().Equal([]string{"https://ipfs.infura.io/ipfs/cidABC"}, s.nft.mintedURIs)
	s.Require().Equal([]common.Address{marketplaceAddress}, s.nft.approvalCalls)

	// Listing of the minted token
	s.Require().Len(s.marketplace.listings, 1)
	s.Require().Equal(nftAddress, s.marketplace.listings[0].nft)
	s.Require().Equal(handle.TokenID, s.marketplace.listings[0].tokenID)
	s.Require().Equal(handle.PriceWei, s.marketplace.listings[0].price)

	s.Require().Equal([]State{StateValidating, StateUploading, StateMinting, StateApproving, StateListing, StateDone}, s.states())

	record, err := s.journal.Load(context.Background(), handle.PublicationID)
	s.Require().NoError(err)
	s.Require().Equal(model.PublicationStateDone, record.State)
	s.Require().Equal("cidABC", model.StringFromText(record.ContentID))
	s.Require().Equal(int64(7), model.BigIntFromNumeric(record.TokenID).Int64())
	s.Require().True(record.Approved)
	s.Require().Equal(signerAddress.Hex(), record.Signer)
	s.Require().Equal(int64(31337), record.ChainID)

	report := s.monitor.GetReport().Publisher
	s.Require().Equal(uint64(1), report.State.PublicationsDone.Load())
	s.Require().Equal(uint64(1), report.State.Mints.Load())
	s.Require().Zero(report.State.TokenIdFromCounter.Load())
}

func (s *PublisherTestSuite) TestListReverted() {
	s.chain.waitErr[listNonce] = fmt.Errorf("%w: 0xabc", eth.ErrTransactionReverted)

	handle, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().Nil(handle)

	failure := s.failure(err)
	s.Require().Equal(StageList, failure.Stage)
	s.Require().Equal(int64(7), failure.TokenID.Int64())
	s.Require().True(failure.Approved)
	s.Require().ErrorIs(err, ErrTransactionFailed)
	s.Require().ErrorIs(err, eth.ErrTransactionReverted)
	s.Require().False(failure.Retryable())
	s.Require().False(failure.Unknown())
	s.Require().Contains(failure.Message(), "your token #7 is minted and approved but unlisted")
	s.Require().NotEqual(common.Hash{}, failure.TxHash)

	states := s.states()
	s.Require().Equal(StateFailed, states[len(states)-1])
	s.Require().Equal(uint64(1), s.monitor.GetReport().Publisher.Errors.List.Load())
}

func (s *PublisherTestSuite) TestMissingPrice() {
	draft := s.draft()
	draft.Price = decimal.Zero

	handle, err := s.publisher.Publish(context.Background(), s.identity, draft)
	s.Require().Nil(handle)

	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Require().Equal("price", validationErr.Field)
	s.Require().Equal("Please set a price", validationErr.Message())

	// No remote calls, nothing journaled
	s.Require().Empty(s.log.all())
	s.Require().Equal(0, s.journal.cache.ItemCount())
	s.Require().Equal(uint64(1), s.monitor.GetReport().Publisher.Errors.Validation.Load())
}

func (s *PublisherTestSuite) TestValidationHasNoSideEffects() {
	drafts := []func(d *DraftAsset){
		func(d *DraftAsset) { d.ImageRef = "" },
		func(d *DraftAsset) { d.Name = " " },
		func(d *DraftAsset) { d.Description = "" },
		func(d *DraftAsset) { d.Price = decimal.RequireFromString("-1") },
		func(d *DraftAsset) { d.Price = decimal.RequireFromString("0.0000000000000000001") },
	}

	for _, modify := range drafts {
		draft := s.draft()
		modify(&draft)

		_, err := s.publisher.Publish(context.Background(), s.identity, draft)
		var validationErr *ValidationError
		s.Require().ErrorAs(err, &validationErr)
	}

	s.Require().Empty(s.log.all())
}

func (s *PublisherTestSuite) TestUploadFailure() {
	s.store.err = fmt.Errorf("%w: connection refused", ipfs.ErrStoreUnavailable)

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageUpload, failure.Stage)
	s.Require().ErrorIs(err, ipfs.ErrStoreUnavailable)
	s.Require().True(failure.Retryable())
	s.Require().Nil(failure.TokenID)
	s.Require().Contains(failure.Message(), "nothing on chain yet")

	// No mint ever
	s.Require().Equal([]string{"upload"}, s.log.all())
}

func (s *PublisherTestSuite) TestMintSubmissionFailure() {
	s.nft.mintErr = errors.New("insufficient funds for gas")

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageMint, failure.Stage)
	s.Require().ErrorIs(err, ErrTransactionFailed)
	s.Require().True(failure.Retryable())
	s.Require().Equal(ipfs.ContentID("cidABC"), failure.ContentID)
	s.Require().Equal(0, s.log.count("approve"))
}

func (s *PublisherTestSuite) TestApproveFailureThenResume() {
	s.chain.waitErr[approveNonce] = fmt.Errorf("%w: 0xdef", eth.ErrTransactionReverted)

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageApprove, failure.Stage)
	s.Require().Equal(int64(7), failure.TokenID.Int64())
	s.Require().False(failure.Approved)
	s.Require().False(failure.Retryable())
	s.Require().Contains(failure.Message(), "token #7 is minted but not approved")

	// Resume approve, then list
	delete(s.chain.waitErr, approveNonce)
	handle, err := s.publisher.Resume(context.Background(), s.identity, s.draft(), failure.ResumePoint())
	s.Require().NoError(err)
	s.Require().Equal(int64(7), handle.TokenID.Int64())

	s.Require().Equal(1, s.log.count("mint"))
	s.Require().Equal(1, s.log.count("upload"))
	s.Require().Equal(2, s.log.count("approve"))
	s.Require().Equal(1, s.log.count("makeItem"))
	s.Require().Equal(1, s.chain.confirmed[mintNonce])
}

func (s *PublisherTestSuite) TestResumeAlreadyApproved() {
	s.nft.approved = true

	handle, err := s.publisher.Resume(context.Background(), s.identity, s.draft(), ResumePoint{
		ContentID: "cidABC",
		TokenID:   big.NewInt(7),
	})
	s.Require().NoError(err)
	s.Require().Equal("https://ipfs.infura.io/ipfs/cidABC", handle.MetadataURI)

	s.Require().Equal([]string{"isApprovedForAll", "makeItem", "wait"}, s.log.all())
	s.Require().Equal(uint64(1), s.monitor.GetReport().Publisher.State.PublicationsResumed.Load())
}

func (s *PublisherTestSuite) TestResumeAfterUpload() {
	handle, err := s.publisher.Resume(context.Background(), s.identity, s.draft(), ResumePoint{ContentID: "cidXYZ"})
	s.Require().NoError(err)

	s.Require().Equal(0, s.log.count("upload"))
	s.Require().Equal([]string{"https://ipfs.infura.io/ipfs/cidXYZ"}, s.nft.mintedURIs)
	s.Require().Equal(ipfs.ContentID("cidXYZ"), handle.ContentID)
}

func (s *PublisherTestSuite) TestResumeByID() {
	s.marketplace.listErr = errors.New("nonce too low")

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	failure := s.failure(err)
	s.Require().Equal(StageList, failure.Stage)

	record, err := s.journal.Load(context.Background(), failure.PublicationID)
	s.Require().NoError(err)
	s.Require().Equal(model.PublicationStateFailed, record.State)
	s.Require().Equal(string(StageList), model.StringFromText(record.FailedStage))

	// Someone else can't resume it
	other := eth.ChainIdentity{Address: common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")}
	_, err = s.publisher.ResumeByID(context.Background(), other, failure.PublicationID)
	s.Require().ErrorIs(err, ErrSignerMismatch)

	s.marketplace.listErr = nil
	s.nft.approved = true
	handle, err := s.publisher.ResumeByID(context.Background(), s.identity, failure.PublicationID)
	s.Require().NoError(err)
	s.Require().Equal(failure.PublicationID, handle.PublicationID)
	s.Require().Equal(int64(7), handle.TokenID.Int64())
	s.Require().Equal(1, s.log.count("mint"))
	s.Require().Equal(1, s.log.count("approve"))

	// Mint and approval hashes survive the resume
	s.Require().Len(handle.TxHashes, 3)

	record, err = s.journal.Load(context.Background(), failure.PublicationID)
	s.Require().NoError(err)
	s.Require().Equal(model.PublicationStateDone, record.State)
	s.Require().Equal("", model.StringFromText(record.Error))

	_, err = s.publisher.ResumeByID(context.Background(), s.identity, failure.PublicationID)
	s.Require().ErrorIs(err, ErrAlreadyListed)

	_, err = s.publisher.ResumeByID(context.Background(), s.identity, "missing")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *PublisherTestSuite) TestMintTimeout() {
	s.chain.waitErr[mintNonce] = fmt.Errorf("%w: %w", eth.ErrConfirmationTimeout, context.DeadlineExceeded)

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageMint, failure.Stage)
	s.Require().True(failure.Unknown())
	s.Require().False(failure.Retryable())
	s.Require().ErrorIs(err, eth.ErrConfirmationTimeout)
	s.Require().NotErrorIs(err, ErrTransactionFailed)
	s.Require().Contains(failure.Message(), "still pending")
	s.Require().Equal(uint64(1), s.monitor.GetReport().Publisher.Errors.ConfirmationTimeout.Load())

	s.Require().Equal(mintTxHash(), failure.ResumePoint().MintTx)

	// Still pending, the sent mint is waited for again instead of minting twice
	s.chain.minedErr[mintTxHash()] = fmt.Errorf("%w: %w", eth.ErrConfirmationTimeout, context.DeadlineExceeded)
	_, err = s.publisher.ResumeByID(context.Background(), s.identity, failure.PublicationID)
	failure = s.failure(err)
	s.Require().Equal(StageMint, failure.Stage)
	s.Require().True(failure.Unknown())
	s.Require().Equal(mintTxHash(), failure.TxHash)
	s.Require().Equal(1, s.log.count("mint"))

	// Mined in the meantime
	delete(s.chain.minedErr, mintTxHash())
	handle, err := s.publisher.ResumeByID(context.Background(), s.identity, failure.PublicationID)
	s.Require().NoError(err)
	s.Require().Equal(int64(7), handle.TokenID.Int64())
	s.Require().Equal(mintTxHash(), handle.TxHashes[StageMint])
	s.Require().Equal(1, s.log.count("mint"))
	s.Require().Equal(uint64(1), s.monitor.GetReport().Publisher.State.MintsRecovered.Load())
}

func (s *PublisherTestSuite) TestResumeAfterTokenIdUnknown() {
	s.nft.noEvent = true
	s.nft.counter = nil

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	failure := s.failure(err)
	s.Require().ErrorIs(err, ErrTokenIdUnknown)
	s.Require().Equal(mintTxHash(), failure.TxHash)

	record, err := s.journal.Load(context.Background(), failure.PublicationID)
	s.Require().NoError(err)
	s.Require().False(record.Unknown)
	s.Require().Nil(model.BigIntFromNumeric(record.TokenID))

	// Event still missing, the token stays unknown and nothing is minted
	_, err = s.publisher.ResumeByID(context.Background(), s.identity, failure.PublicationID)
	s.Require().ErrorIs(err, ErrTokenIdUnknown)
	s.Require().Equal(1, s.log.count("mint"))

	s.nft.noEvent = false
	handle, err := s.publisher.ResumeByID(context.Background(), s.identity, failure.PublicationID)
	s.Require().NoError(err)
	s.Require().Equal(int64(7), handle.TokenID.Int64())
	s.Require().Equal(1, s.log.count("mint"))
	s.Require().Equal(1, s.log.count("upload"))
	s.Require().Equal(1, s.log.count("makeItem"))

	// Same through the in-memory resume point
	s.nft.noEvent = true
	_, err = s.publisher.Publish(context.Background(), s.identity, s.draft())
	failure = s.failure(err)
	s.nft.noEvent = false
	handle, err = s.publisher.Resume(context.Background(), s.identity, s.draft(), failure.ResumePoint())
	s.Require().NoError(err)
	s.Require().Equal(int64(7), handle.TokenID.Int64())
	s.Require().Equal(2, s.log.count("mint"))
}

func (s *PublisherTestSuite) crashedDuringMint(hashes map[string]string) *model.Publication {
	record := &model.Publication{
		ID:          "crashed",
		Signer:      signerAddress.Hex(),
		Name:        "Art1",
		Description: "desc",
		ImageRef:    "cid123",
		Price:       model.NumericFromDecimal(s.draft().Price),
		ContentID:   model.TextFromString("cidABC"),
		MetadataURI: model.TextFromString("https://ipfs.infura.io/ipfs/cidABC"),
		TokenID:     model.NumericFromBigInt(nil),
		ItemID:      model.NumericFromBigInt(nil),
		State:       model.PublicationStateMinting,
	}
	if hashes != nil {
		s.Require().NoError(record.TxHashes.Set(hashes))
	}
	s.Require().NoError(s.journal.Save(context.Background(), record))
	return record
}

func (s *PublisherTestSuite) TestResumeAfterCrashDuringMint() {
	record := s.crashedDuringMint(map[string]string{"mint": mintTxHash().Hex()})

	handle, err := s.publisher.ResumeByID(context.Background(), s.identity, record.ID)
	s.Require().NoError(err)
	s.Require().Equal(int64(7), handle.TokenID.Int64())
	s.Require().Equal(0, s.log.count("mint"))
	s.Require().Equal(0, s.log.count("upload"))
	s.Require().Equal(1, s.log.count("waitMined"))
	s.Require().Equal(1, s.log.count("makeItem"))
}

func (s *PublisherTestSuite) TestResumeAfterCrashBeforeMintJournaled() {
	record := s.crashedDuringMint(nil)

	_, err := s.publisher.ResumeByID(context.Background(), s.identity, record.ID)
	s.Require().ErrorIs(err, ErrMintUnresolved)
	s.Require().Equal(0, s.log.count("mint"))
}

func (s *PublisherTestSuite) TestResumeAfterMintReverted() {
	record := s.crashedDuringMint(map[string]string{"mint": "0x01"})
	s.chain.minedErr[common.HexToHash("0x01")] = eth.ErrTransactionReverted

	handle, err := s.publisher.ResumeByID(context.Background(), s.identity, record.ID)
	s.Require().NoError(err)
	s.Require().Equal(1, s.log.count("mint"))
	s.Require().Equal(mintTxHash(), handle.TxHashes[StageMint])
}

func (s *PublisherTestSuite) TestTokenIdFromCounter() {
	s.nft.noEvent = true
	s.nft.counter = big.NewInt(12)

	handle, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().NoError(err)
	s.Require().Equal(int64(12), handle.TokenID.Int64())
	s.Require().Equal(1, s.log.count("tokenCount"))
	s.Require().Equal(uint64(1), s.monitor.GetReport().Publisher.State.TokenIdFromCounter.Load())
}

func (s *PublisherTestSuite) TestTokenIdSourceCounter() {
	s.config.Publisher.TokenIdSource = config.TokenIdSourceCounter
	s.nft.counter = big.NewInt(3)

	handle, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().NoError(err)
	s.Require().Equal(int64(3), handle.TokenID.Int64())
}

func (s *PublisherTestSuite) TestTokenIdUnknown() {
	s.nft.noEvent = true
	s.nft.counter = nil

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageMint, failure.Stage)
	s.Require().ErrorIs(err, ErrTokenIdUnknown)
	s.Require().False(failure.Retryable())
	s.Require().Equal(0, s.log.count("approve"))
}

func (s *PublisherTestSuite) TestSessionExpired() {
	s.chain.contractErr = eth.ErrSessionExpired

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageSession, failure.Stage)
	s.Require().ErrorIs(err, eth.ErrSessionExpired)
	s.Require().True(failure.Retryable())
	s.Require().Empty(s.log.all())
}

func (s *PublisherTestSuite) TestCancelledBeforeMint() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.store.onUpload = func(merged context.Context) {
		cancel()
		<-merged.Done()
	}

	_, err := s.publisher.Publish(ctx, s.identity, s.draft())

	failure := s.failure(err)
	s.Require().Equal(StageMint, failure.Stage)
	s.Require().ErrorIs(err, context.Canceled)
	s.Require().True(failure.Retryable())
	s.Require().Equal(ipfs.ContentID("cidABC"), failure.ContentID)
	s.Require().Equal(0, s.log.count("mint"))
}

func (s *PublisherTestSuite) TestJournalFailureDoesNotChangeOutcome() {
	s.journal.err = errors.New("database is down")

	handle, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().NoError(err)
	s.Require().NotNil(handle)
	s.Require().Greater(s.monitor.GetReport().Publisher.Errors.JournalSave.Load(), uint64(0))
}

func (s *PublisherTestSuite) TestEventsDroppedWhenFull() {
	s.publisher.events = make(chan *Event, 1)

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().NoError(err)

	s.Require().Len(s.events(), 1)
	s.Require().Equal(uint64(5), s.monitor.GetReport().Publisher.Errors.EventDropped.Load())
}

func (s *PublisherTestSuite) TestFailureEvent() {
	s.chain.waitErr[approveNonce] = eth.ErrTransactionReverted

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().Error(err)

	events := s.events()
	last := events[len(events)-1]
	s.Require().Equal(StateFailed, last.State)
	s.Require().Equal(StageApprove, last.Stage)
	s.Require().Equal("7", last.TokenID)
	s.Require().Equal("cidABC", last.ContentID)
	s.Require().NotEmpty(last.TxHash)
	s.Require().NotEmpty(last.Error)

	payload, err := last.MarshalBinary()
	s.Require().NoError(err)
	s.Require().Contains(string(payload), `"stage":"approve"`)
}

// Either a listing of a confirmed mint or a stage tagged failure, never both
func (s *PublisherTestSuite) TestOutcomeIsListingOrFailure() {
	failAt := []func(){
		func() {},
		func() { s.store.err = ipfs.ErrStoreUnavailable },
		func() { s.nft.mintErr = errors.New("rejected") },
		func() { s.chain.waitErr[mintNonce] = eth.ErrTransactionReverted },
		func() { s.nft.approveErr = errors.New("rejected") },
		func() { s.chain.waitErr[approveNonce] = eth.ErrConfirmationTimeout },
		func() { s.marketplace.listErr = errors.New("rejected") },
		func() { s.chain.waitErr[listNonce] = eth.ErrTransactionReverted },
	}

	for i, setup := range failAt {
		if i > 0 {
			s.TearDownTest()
			s.SetupTest()
		}
		setup()

		draft := s.draft()
		draft.Price = decimal.New(int64(i+1), -3)

		handle, err := s.publisher.Publish(context.Background(), s.identity, draft)
		if err == nil {
			s.Require().NotNil(handle)
			s.Require().Equal(1, s.chain.confirmed[mintNonce])
			s.Require().Equal(1, s.chain.confirmed[approveNonce])
			s.Require().Equal(nftAddress, handle.NFTContract)
			s.Require().Equal(s.nft.tokenID, handle.TokenID)
		} else {
			s.Require().Nil(handle)
			failure := s.failure(err)
			s.Require().NotEmpty(failure.Stage)
			s.Require().Equal(0, s.chain.confirmed[listNonce])
			if failure.TokenID != nil {
				s.Require().Equal(1, s.chain.confirmed[mintNonce])
			}
		}
	}
}

func (s *PublisherTestSuite) TestStopping() {
	s.publisher.StopWait()

	_, err := s.publisher.Publish(context.Background(), s.identity, s.draft())
	s.Require().ErrorIs(err, ErrStopping)
	s.Require().Empty(s.log.all())
}
