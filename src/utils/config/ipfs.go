package config

import (
	"time"

	"github.com/spf13/viper"
)

type Ipfs struct {
	// Url of the IPFS HTTP API used for uploads
	ApiUrl string

	// Host of the gateway used to build retrieval urls
	GatewayHost string

	// Credentials sent as basic auth
	ProjectId     string
	ProjectSecret string

	// Pin uploaded content
	Pin bool

	// CID version requested from the node
	CidVersion int

	// Time limit for requests. The timeout includes connection time, any
	// redirects, and reading the response body
	RequestTimeout time.Duration

	// Maximum amount of time a dial will wait for a connect to complete.
	DialerTimeout time.Duration

	// Interval between keep-alive probes for an active network connection.
	DialerKeepAlive time.Duration

	// Maximum amount of time an idle (keep-alive) connection will remain idle before closing itself.
	IdleConnTimeout time.Duration

	// Maximum amount of time waiting to wait for a TLS handshake
	TLSHandshakeTimeout time.Duration

	// Time in which max num of requests is enforced
	LimiterInterval time.Duration

	// Max num requests per interval
	LimiterBurstSize int
}

func setIpfsDefaults(v *viper.Viper) {
	v.SetDefault("Ipfs.ApiUrl", "https://ipfs.infura.io:5001")
	v.SetDefault("Ipfs.GatewayHost", "ipfs.infura.io")
	v.SetDefault("Ipfs.Pin", "true")
	v.SetDefault("Ipfs.CidVersion", "0")
	v.SetDefault("Ipfs.RequestTimeout", "60s")
	v.SetDefault("Ipfs.DialerTimeout", "30s")
	v.SetDefault("Ipfs.DialerKeepAlive", "15s")
	v.SetDefault("Ipfs.IdleConnTimeout", "31s")
	v.SetDefault("Ipfs.TLSHandshakeTimeout", "10s")
	v.SetDefault("Ipfs.LimiterInterval", "100ms")
	v.SetDefault("Ipfs.LimiterBurstSize", "10")
}
