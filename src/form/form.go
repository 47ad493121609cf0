package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/warp-contracts/publisher/src/publish"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const SuccessMessage = "NFT created and listed successfully!"

var ErrBusy = errors.New("publication already in progress")

// Runs the publication pipeline
type Publisher interface {
	Publish(ctx context.Context, identity eth.ChainIdentity, draft publish.DraftAsset) (*publish.ListingHandle, error)
	ResumeByID(ctx context.Context, identity eth.ChainIdentity, id string) (*publish.ListingHandle, error)
}

// Stores images as soon as they're attached
type ImageStore interface {
	UploadFile(ctx context.Context, name string, reader io.Reader) (ipfs.ContentID, error)
}

// Result of a submit, ready to be shown to the user
type Outcome struct {
	Listing *publish.ListingHandle
	Err     error
	Message string
}

func (self Outcome) Success() bool {
	return self.Err == nil && self.Listing != nil
}

// Collects user input for a single asset
type Form struct {
	log *logrus.Entry

	publisher    Publisher
	store        ImageStore
	identity     eth.ChainIdentity
	maxImageSize int64

	mtx      sync.Mutex
	draft    publish.DraftAsset
	priceErr error

	busy atomic.Bool
}

func NewForm(publisher Publisher, store ImageStore) (self *Form) {
	self = new(Form)
	self.log = logger.NewSublogger("form")
	self.publisher = publisher
	self.store = store
	return
}

func (self *Form) WithIdentity(identity eth.ChainIdentity) *Form {
	self.identity = identity
	return self
}

// 0 means no limit
func (self *Form) WithMaxImageSize(maxImageSize int64) *Form {
	self.maxImageSize = maxImageSize
	return self
}

func (self *Form) SetName(name string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.Name = strings.TrimSpace(name)
}

func (self *Form) SetDescription(description string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.Description = strings.TrimSpace(description)
}

// Parses the price in ETH. Empty input clears the price.
func (self *Form) SetPrice(price string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.priceErr = nil
	self.draft.Price = decimal.Zero

	price = strings.TrimSpace(price)
	if price == "" {
		return nil
	}

	value, err := decimal.NewFromString(price)
	if err != nil {
		self.priceErr = &publish.ValidationError{Field: "price", Reason: "not a number"}
		return self.priceErr
	}

	self.draft.Price = value
	return nil
}

// Uses an image that's already stored
func (self *Form) SetImageRef(ref ipfs.ContentID) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.ImageRef = ref
}

// Uploads the image right away and remembers its identifier
func (self *Form) AttachImage(ctx context.Context, name string, reader io.Reader) (cid ipfs.ContentID, err error) {
	if self.maxImageSize > 0 {
		var data []byte
		data, err = io.ReadAll(io.LimitReader(reader, self.maxImageSize+1))
		if err != nil {
			return
		}
		if int64(len(data)) > self.maxImageSize {
			return "", &publish.ValidationError{Field: "image", Reason: fmt.Sprintf("larger than %d bytes", self.maxImageSize)}
		}
		reader = bytes.NewReader(data)
	}

	cid, err = self.store.UploadFile(ctx, name, reader)
	if err != nil {
		self.log.WithError(err).WithField("name", name).Warn("Failed to upload image")
		return
	}

	self.log.WithField("cid", cid).Debug("Image uploaded")
	self.SetImageRef(cid)
	return
}

// Copy of the current input
func (self *Form) Draft() publish.DraftAsset {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.draft
}

func (self *Form) Reset() {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft = publish.DraftAsset{}
	self.priceErr = nil
}

// Same rules as the pipeline. Unparsable prices are reported as such.
func (self *Form) Validate() error {
	return self.validate(publish.DraftAsset.Validate)
}

// Validate without the image. Lets a complete draft be checked before the image is uploaded.
func (self *Form) ValidateDetails() error {
	return self.validate(publish.DraftAsset.ValidateDetails)
}

func (self *Form) validate(check func(publish.DraftAsset) error) error {
	self.mtx.Lock()
	draft, priceErr := self.draft, self.priceErr
	self.mtx.Unlock()

	err := check(draft)
	var validationErr *publish.ValidationError
	if priceErr != nil && errors.As(err, &validationErr) && validationErr.Field == "price" {
		return priceErr
	}
	return err
}

// Publishes the current draft. The form is cleared only if the asset got listed.
func (self *Form) Submit(ctx context.Context) Outcome {
	if !self.busy.CompareAndSwap(false, true) {
		return Failed(ErrBusy)
	}
	defer self.busy.Store(false)

	err := self.Validate()
	if err != nil {
		return Failed(err)
	}

	listing, err := self.publisher.Publish(ctx, self.identity, self.Draft())
	if err != nil {
		return Failed(err)
	}

	self.Reset()
	return Succeeded(listing)
}

func (self *Form) IsBusy() bool {
	return self.busy.Load()
}

func Succeeded(listing *publish.ListingHandle) Outcome {
	return Outcome{Listing: listing, Message: SuccessMessage}
}

func Failed(err error) Outcome {
	return Outcome{Err: err, Message: Message(err)}
}

// Text shown to the user
func Message(err error) string {
	var validationErr *publish.ValidationError
	var failure *publish.Failure
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message()
	case errors.As(err, &failure):
		return failure.Message()
	case errors.Is(err, ErrBusy):
		return "Please wait, the previous NFT is still being published"
	case errors.Is(err, ipfs.ErrStoreUnavailable):
		return fmt.Sprintf("upload failed, nothing on chain yet: %v", err)
	default:
		return err.Error()
	}
}
