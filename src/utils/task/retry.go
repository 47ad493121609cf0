package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying
type Retry struct {
	ctx                context.Context
	initialInterval    time.Duration
	maxElapsedTime     time.Duration
	maxInterval        time.Duration
	acceptableDuration time.Duration
	onError            func(error, bool) error
}

func NewRetry() *Retry {
	return new(Retry)
}

// 0 means no limit
func (self *Retry) WithMaxElapsedTime(maxElapsedTime time.Duration) *Retry {
	self.maxElapsedTime = maxElapsedTime
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

func (self *Retry) WithInitialInterval(initialInterval time.Duration) *Retry {
	self.initialInterval = initialInterval
	return self
}

// Errors that happen before this duration passes are reported as acceptable
func (self *Retry) WithAcceptableDuration(acceptableDuration time.Duration) *Retry {
	self.acceptableDuration = acceptableDuration
	return self
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

// Called after each failure. Returning backoff.Permanent stops retrying.
func (self *Retry) WithOnError(v func(err error, isDurationAcceptable bool) error) *Retry {
	self.onError = v
	return self
}

func (self *Retry) Run(f func() error) error {
	if self.ctx == nil {
		self.ctx = context.Background()
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = self.maxElapsedTime
	if self.maxInterval > 0 {
		b.MaxInterval = self.maxInterval
	}
	if self.initialInterval > 0 {
		b.InitialInterval = self.initialInterval
	}
	if b.InitialInterval > b.MaxInterval {
		b.InitialInterval = b.MaxInterval
	}

	started := time.Now()
	return backoff.Retry(func() error {
		err := f()
		if err == nil || self.onError == nil {
			return err
		}
		isDurationAcceptable := self.acceptableDuration == 0 || time.Since(started) < self.acceptableDuration
		return self.onError(err, isDurationAcceptable)
	}, backoff.WithContext(b, self.ctx))
}
