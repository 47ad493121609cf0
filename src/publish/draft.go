package publish

import (
	"fmt"
	"strings"

	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"

	"github.com/shopspring/decimal"
)

// Asset the user wants to mint and list.
// The pipeline works on a copy, changes made afterwards don't affect it.
type DraftAsset struct {
	// Uploaded image
	ImageRef ipfs.ContentID

	Name        string
	Description string

	// Listing price in ETH
	Price decimal.Decimal
}

// Invalid or missing user input
type ValidationError struct {
	Field  string
	Reason string
}

func (self *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", self.Field, self.Reason)
}

// Text shown to the user
func (self *ValidationError) Message() string {
	switch self.Field {
	case "image":
		if self.Reason != "missing" {
			return "Please upload a different image: " + self.Reason
		}
		return "Please upload an image"
	case "name":
		return "Please provide a name"
	case "description":
		return "Please provide a description"
	case "price":
		if self.Reason != "missing" {
			return "Please set a valid price"
		}
		return "Please set a price"
	default:
		return self.Error()
	}
}

// Checks fields in the order they appear in the form
func (self DraftAsset) Validate() error {
	if strings.TrimSpace(string(self.ImageRef)) == "" {
		return &ValidationError{Field: "image", Reason: "missing"}
	}
	return self.ValidateDetails()
}

// Checks everything but the image, for callers that upload the image last
func (self DraftAsset) ValidateDetails() error {
	if strings.TrimSpace(self.Name) == "" {
		return &ValidationError{Field: "name", Reason: "missing"}
	}
	if strings.TrimSpace(self.Description) == "" {
		return &ValidationError{Field: "description", Reason: "missing"}
	}
	if self.Price.IsZero() {
		return &ValidationError{Field: "price", Reason: "missing"}
	}
	if self.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must be positive"}
	}
	if -self.Price.Exponent() > eth.EtherDecimals && !self.Price.Shift(eth.EtherDecimals).IsInteger() {
		return &ValidationError{Field: "price", Reason: fmt.Sprintf("at most %d decimal places", eth.EtherDecimals)}
	}
	return nil
}

// Token metadata stored in IPFS, the token URI points to it
type Metadata struct {
	Image       string `json:"image"`
	Price       string `json:"price"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Image is referenced by its gateway URI on the configured gateway. Other URLs are kept as they are.
func (self DraftAsset) Metadata(gatewayURI func(ipfs.ContentID) string) Metadata {
	image := string(self.ImageRef)
	if cid, ok := ipfs.ParseGatewayURI(image); ok {
		image = gatewayURI(cid)
	}

	return Metadata{
		Image:       image,
		Price:       self.Price.String(),
		Name:        self.Name,
		Description: self.Description,
	}
}
