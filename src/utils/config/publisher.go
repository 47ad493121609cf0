package config

import (
	"github.com/spf13/viper"
)

const (
	// Token id is parsed from the Transfer event emitted by the mint transaction
	TokenIdSourceEvent = "event"

	// Token id is read from tokenCount() after the mint is confirmed
	TokenIdSourceCounter = "counter"
)

type Publisher struct {
	// Where the id of a freshly minted token comes from
	TokenIdSource string

	// Size of the buffer for pipeline events
	EventChannelSize int

	// Redis channel pipeline events are published to
	EventChannelName string

	// Max size of an uploaded image, in bytes
	MaxImageSize int64
}

func setPublisherDefaults(v *viper.Viper) {
	v.SetDefault("Publisher.TokenIdSource", TokenIdSourceEvent)
	v.SetDefault("Publisher.EventChannelSize", "100")
	v.SetDefault("Publisher.EventChannelName", "publications")
	v.SetDefault("Publisher.MaxImageSize", "33554432")
}
