package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/ipfs/responses"
)

// Identifier returned by the content addressed store
type ContentID string

func (self ContentID) String() string {
	return string(self)
}

// Uploads content to the IPFS HTTP API.
// Every upload is a single request, failures are never retried here.
type Client struct {
	*BaseClient
}

func NewClient(config *config.Ipfs) (self *Client) {
	self = new(Client)
	self.BaseClient = newBaseClient(config)
	return
}

// Uploads raw bytes
func (self *Client) Upload(ctx context.Context, payload []byte) (ContentID, error) {
	return self.UploadFile(ctx, "blob", bytes.NewReader(payload))
}

// Serializes v to JSON and uploads it
func (self *Client) UploadJSON(ctx context.Context, v any) (cid ContentID, err error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	return self.UploadFile(ctx, "metadata.json", bytes.NewReader(payload))
}

func (self *Client) UploadFile(ctx context.Context, name string, reader io.Reader) (cid ContentID, err error) {
	req, cancel := self.Request(ctx)
	defer cancel()

	resp, err := req.
		SetFileReader("file", name, reader).
		SetQueryParams(map[string]string{
			"pin":         strconv.FormatBool(self.config.Pin),
			"cid-version": strconv.Itoa(self.config.CidVersion),
		}).
		SetResult(&responses.Add{}).
		ForceContentType("application/json").
		Post("/api/v0/add")
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		return
	}

	out, ok := resp.Result().(*responses.Add)
	if !ok {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, ErrFailedToParse)
		return
	}
	if len(out.Hash) == 0 {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, ErrHashEmpty)
		return
	}

	cid = ContentID(out.Hash)
	self.log.WithField("cid", cid).WithField("name", name).WithField("size", out.Size).Debug("Uploaded content")
	return
}

// Url under which the content can be retrieved
func (self *Client) GatewayURI(cid ContentID) string {
	return GatewayURI(self.config.GatewayHost, cid)
}
