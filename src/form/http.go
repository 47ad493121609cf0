package form

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/warp-contracts/publisher/src/publish"
	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Rest front-end of the form. Every request carries a complete draft.
type Handler struct {
	log *logrus.Entry

	publisher    Publisher
	store        ImageStore
	identity     func() eth.ChainIdentity
	maxImageSize int64

	// One publication at a time, same as a single form
	busy atomic.Bool
}

type Response struct {
	ID        string            `json:"id,omitempty"`
	Message   string            `json:"message"`
	Field     string            `json:"field,omitempty"`
	Stage     string            `json:"stage,omitempty"`
	ContentID string            `json:"content_id,omitempty"`
	TokenID   string            `json:"token_id,omitempty"`
	ItemID    string            `json:"item_id,omitempty"`
	Price     string            `json:"price,omitempty"`
	PriceWei  string            `json:"price_wei,omitempty"`
	TxHashes  map[string]string `json:"tx_hashes,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Unknown   bool              `json:"unknown,omitempty"`
}

func NewHandler(config *config.Config, publisher Publisher, store ImageStore, identity func() eth.ChainIdentity) (self *Handler) {
	self = new(Handler)
	self.log = logger.NewSublogger("form-http")
	self.publisher = publisher
	self.store = store
	self.identity = identity
	self.maxImageSize = config.Publisher.MaxImageSize
	return
}

func (self *Handler) Register(v1 *gin.RouterGroup) {
	v1.POST("publications", self.OnPostPublication)
	v1.POST("publications/:id/resume", self.OnResumePublication)
}

func (self *Handler) OnPostPublication(c *gin.Context) {
	if !self.busy.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, toResponse(Failed(ErrBusy)))
		return
	}
	defer self.busy.Store(false)

	form := NewForm(self.publisher, self.store).
		WithIdentity(self.identity()).
		WithMaxImageSize(self.maxImageSize)

	form.SetName(c.PostForm("name"))
	form.SetDescription(c.PostForm("description"))

	err := form.SetPrice(c.PostForm("price"))
	if err != nil {
		self.respond(c, Failed(err))
		return
	}

	// Nothing is uploaded for a draft that can't be published anyway
	err = form.ValidateDetails()
	if err != nil {
		self.respond(c, Failed(err))
		return
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		reader, err := file.Open()
		if err != nil {
			self.respond(c, Failed(&publish.ValidationError{Field: "image", Reason: "unreadable"}))
			return
		}
		defer reader.Close()

		_, err = form.AttachImage(c.Request.Context(), file.Filename, reader)
		if err != nil {
			self.respond(c, Failed(err))
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		form.SetImageRef(ipfs.ContentID(c.PostForm("image_ref")))
	default:
		self.respond(c, Failed(&publish.ValidationError{Field: "image", Reason: "unreadable"}))
		return
	}

	self.respond(c, form.Submit(c.Request.Context()))
}

func (self *Handler) OnResumePublication(c *gin.Context) {
	if !self.busy.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, toResponse(Failed(ErrBusy)))
		return
	}
	defer self.busy.Store(false)

	listing, err := self.publisher.ResumeByID(c.Request.Context(), self.identity(), c.Param("id"))
	if err != nil {
		self.respond(c, Failed(err))
		return
	}

	self.respond(c, Succeeded(listing))
}

func (self *Handler) respond(c *gin.Context, outcome Outcome) {
	status := StatusCode(outcome.Err)
	if status >= http.StatusInternalServerError {
		self.log.WithError(outcome.Err).Warn("Publication failed")
	}
	c.JSON(status, toResponse(outcome))
}

// Maps a publication error to a http status
func StatusCode(err error) int {
	var validationErr *publish.ValidationError
	var failure *publish.Failure
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusy), errors.Is(err, publish.ErrAlreadyListed), errors.Is(err, publish.ErrMintUnresolved):
		return http.StatusConflict
	case errors.Is(err, publish.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, publish.ErrSignerMismatch):
		return http.StatusForbidden
	case errors.Is(err, publish.ErrStopping):
		return http.StatusServiceUnavailable
	case errors.As(err, &failure) && failure.Unknown():
		return http.StatusGatewayTimeout
	case errors.As(err, &failure) && failure.Stage == publish.StageSession:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func toResponse(outcome Outcome) (out Response) {
	out.Message = outcome.Message

	var validationErr *publish.ValidationError
	if errors.As(outcome.Err, &validationErr) {
		out.Field = validationErr.Field
	}

	var failure *publish.Failure
	if errors.As(outcome.Err, &failure) {
		out.ID = failure.PublicationID
		out.Stage = string(failure.Stage)
		out.ContentID = string(failure.ContentID)
		if failure.TokenID != nil {
			out.TokenID = failure.TokenID.String()
		}
		if failure.TxHash != (common.Hash{}) {
			out.TxHashes = map[string]string{string(failure.Stage): failure.TxHash.Hex()}
		}
		out.Retryable = failure.Retryable()
		out.Unknown = failure.Unknown()
	}

	listing := outcome.Listing
	if listing == nil {
		return
	}

	out.ID = listing.PublicationID
	out.ContentID = string(listing.ContentID)
	out.TokenID = listing.TokenID.String()
	out.Price = listing.Price.String()
	if listing.PriceWei != nil {
		out.PriceWei = listing.PriceWei.String()
	}
	if listing.ItemID != nil {
		out.ItemID = listing.ItemID.String()
	}
	out.TxHashes = make(map[string]string, len(listing.TxHashes))
	for stage, hash := range listing.TxHashes {
		out.TxHashes[string(stage)] = hash.Hex()
	}
	return
}
