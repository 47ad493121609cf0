package publisher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding"
	"errors"
	"fmt"
	"time"

	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/monitoring"
	"github.com/warp-contracts/publisher/src/utils/task"

	"github.com/redis/go-redis/v9"
)

// Subset of the Redis client used for publishing
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Forwards messages to a Redis channel
type RedisPublisher[In encoding.BinaryMarshaler] struct {
	*task.Task

	redisConfig config.Redis

	monitor monitoring.Monitor

	client      RedisClient
	channelName string
	input       chan In
}

func NewRedisPublisher[In encoding.BinaryMarshaler](config *config.Config, redisConfig config.Redis, name string) (self *RedisPublisher[In]) {
	self = new(RedisPublisher[In])

	self.redisConfig = redisConfig

	// Pending messages are flushed before the connection is closed
	self.Task = task.NewTask(config, name).
		WithSubtaskFunc(self.run).
		WithOnBeforeStart(self.connect).
		WithWorkerPool(redisConfig.MaxWorkers, redisConfig.MaxQueueSize).
		WithOnAfterStop(self.disconnect)

	return
}

func (self *RedisPublisher[In]) WithInputChannel(v chan In) *RedisPublisher[In] {
	self.input = v
	return self
}

func (self *RedisPublisher[In]) WithChannelName(v string) *RedisPublisher[In] {
	self.channelName = v
	return self
}

func (self *RedisPublisher[In]) WithMonitor(monitor monitoring.Monitor) *RedisPublisher[In] {
	self.monitor = monitor
	return self
}

// Client used instead of connecting to the configured server
func (self *RedisPublisher[In]) WithClient(client RedisClient) *RedisPublisher[In] {
	self.client = client
	return self
}

func (self *RedisPublisher[In]) disconnect() {
	err := self.client.Close()
	if err != nil {
		self.Log.WithError(err).Error("Failed to close connection")
	}
}

func (self *RedisPublisher[In]) connect() (err error) {
	if self.client == nil {
		opts := redis.Options{
			ClientName:      fmt.Sprintf("publisher/%s", self.Name),
			Addr:            fmt.Sprintf("%s:%d", self.redisConfig.Host, self.redisConfig.Port),
			Password:        self.redisConfig.Password,
			Username:        self.redisConfig.User,
			DB:              self.redisConfig.DB,
			MinIdleConns:    self.redisConfig.MinIdleConns,
			MaxIdleConns:    self.redisConfig.MaxIdleConns,
			ConnMaxIdleTime: self.redisConfig.ConnMaxIdleTime,
			PoolSize:        self.redisConfig.MaxOpenConns,
			ConnMaxLifetime: self.redisConfig.ConnMaxLifetime,
		}

		if self.redisConfig.ClientCert != "" && self.redisConfig.ClientKey != "" && self.redisConfig.CaCert != "" {
			cert, err := tls.X509KeyPair([]byte(self.redisConfig.ClientCert), []byte(self.redisConfig.ClientKey))
			if err != nil {
				return fmt.Errorf("failed to load client cert: %w", err)
			}

			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM([]byte(self.redisConfig.CaCert)) {
				return errors.New("failed to append CA cert to pool")
			}

			opts.TLSConfig = &tls.Config{
				RootCAs:      caCertPool,
				Certificates: []tls.Certificate{cert},
			}
		}

		self.client = redis.NewClient(&opts)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = self.client.Ping(ctx).Err()
	if err != nil {
		self.Log.WithError(err).Error("Failed to ping Redis")
		self.monitor.GetReport().RedisPublisher.Errors.Connect.Inc()
		return
	}

	return
}

func (self *RedisPublisher[In]) run() (err error) {
	for {
		select {
		case <-self.Ctx.Done():
			return nil
		case payload, ok := <-self.input:
			if !ok {
				return nil
			}
			self.SubmitToWorker(func() {
				self.publish(payload)
			})
		}
	}
}

func (self *RedisPublisher[In]) publish(payload In) {
	report := self.monitor.GetReport().RedisPublisher

	data, err := payload.MarshalBinary()
	if err != nil {
		self.Log.WithError(err).Error("Failed to marshal message")
		report.Errors.Marshal.Inc()
		return
	}

	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.redisConfig.MaxElapsedTime).
		WithMaxInterval(self.redisConfig.MaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.Log.WithError(err).Warn("Failed to publish message, retrying")
			report.Errors.Publish.Inc()
			return err
		}).
		Run(func() error {
			return self.client.Publish(self.Ctx, self.channelName, data).Err()
		})
	if err != nil {
		self.Log.WithError(err).Error("Failed to publish message, giving up")
		report.Errors.PersistentFailure.Inc()
		return
	}

	report.State.MessagesPublished.Inc()
	report.State.LastSuccessfulMessageTimestamp.Store(time.Now().Unix())
}
