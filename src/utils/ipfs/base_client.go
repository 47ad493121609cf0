package ipfs

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type BaseClient struct {
	client  *resty.Client
	config  *config.Ipfs
	log     *logrus.Entry
	limiter *rate.Limiter
}

func newBaseClient(config *config.Ipfs) (self *BaseClient) {
	self = new(BaseClient)
	self.config = config
	self.log = logger.NewSublogger("ipfs-client")

	interval := config.LimiterInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	burst := config.LimiterBurstSize
	if burst <= 0 {
		burst = 1
	}
	self.limiter = rate.NewLimiter(rate.Every(interval), burst)

	self.client =
		resty.New().
			SetBaseURL(config.ApiUrl).
			SetTimeout(config.RequestTimeout).
			SetHeader("User-Agent", "warp.cc/publisher").
			// Retrying is up to the caller
			SetRetryCount(0).
			SetLogger(logger.NewSublogger("ipfs-resty")).
			SetTransport(self.createTransport()).
			OnBeforeRequest(self.onRateLimit).
			OnAfterResponse(self.onStatusToError)

	if config.ProjectId != "" || config.ProjectSecret != "" {
		self.client.SetBasicAuth(config.ProjectId, config.ProjectSecret)
	}

	return
}

func (self *BaseClient) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.DialerTimeout,
		KeepAlive: self.config.DialerKeepAlive,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// Some config options disable http2, try it anyway
		ForceAttemptHTTP2: true,

		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       self.config.IdleConnTimeout,
		MaxIdleConnsPerHost:   2,
	}
}

func (self *BaseClient) Request(ctx context.Context) (*resty.Request, context.CancelFunc) {
	if self.config.RequestTimeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return self.client.R().SetContext(ctx), cancel
	}
	ctx, cancel := context.WithTimeout(ctx, self.config.RequestTimeout)
	return self.client.R().SetContext(ctx), cancel
}

func (self *BaseClient) onStatusToError(c *resty.Client, resp *resty.Response) error {
	// Non-success status code turns into an error
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("resp", string(resp.Body())).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

func (self *BaseClient) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	// Blocks till the request is possible
	// Or ctx gets canceled
	err = self.limiter.Wait(req.Context())
	if err != nil {
		self.log.WithError(err).Error("Rate limiting failed")
	}
	return
}
