package monitor_publisher

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Publisher
	PublicationsStarted              *prometheus.Desc
	PublicationsResumed              *prometheus.Desc
	PublicationsDone                 *prometheus.Desc
	PublicationsFailed               *prometheus.Desc
	Uploads                          *prometheus.Desc
	Mints                            *prometheus.Desc
	Approvals                        *prometheus.Desc
	Listings                         *prometheus.Desc
	TokenIdFromCounter               *prometheus.Desc
	MintsRecovered                   *prometheus.Desc
	AveragePublicationsDonePerMinute *prometheus.Desc

	// Redis publisher
	MessagesPublished *prometheus.Desc

	// Errors
	FailedStage                 *prometheus.Desc
	ConfirmationTimeoutError    *prometheus.Desc
	JournalSaveError            *prometheus.Desc
	EventDroppedError           *prometheus.Desc
	RedisPublishError           *prometheus.Desc
	RedisPersistentFailureError *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "publisher",
	}

	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, labels),

		PublicationsStarted:              prometheus.NewDesc("publications_started", "", nil, labels),
		PublicationsResumed:              prometheus.NewDesc("publications_resumed", "", nil, labels),
		PublicationsDone:                 prometheus.NewDesc("publications_done", "", nil, labels),
		PublicationsFailed:               prometheus.NewDesc("publications_failed", "", nil, labels),
		Uploads:                          prometheus.NewDesc("uploads", "", nil, labels),
		Mints:                            prometheus.NewDesc("mints", "", nil, labels),
		Approvals:                        prometheus.NewDesc("approvals", "", nil, labels),
		Listings:                         prometheus.NewDesc("listings", "", nil, labels),
		TokenIdFromCounter:               prometheus.NewDesc("token_id_from_counter", "", nil, labels),
		MintsRecovered:                   prometheus.NewDesc("mints_recovered", "", nil, labels),
		AveragePublicationsDonePerMinute: prometheus.NewDesc("average_publications_done_per_minute", "", nil, labels),

		MessagesPublished: prometheus.NewDesc("redis_messages_published", "", nil, labels),

		// Errors
		FailedStage:                 prometheus.NewDesc("error_stage", "Failures by stage", []string{"stage"}, labels),
		ConfirmationTimeoutError:    prometheus.NewDesc("error_confirmation_timeout", "", nil, labels),
		JournalSaveError:            prometheus.NewDesc("error_journal_save", "", nil, labels),
		EventDroppedError:           prometheus.NewDesc("error_event_dropped", "", nil, labels),
		RedisPublishError:           prometheus.NewDesc("error_redis_publish", "", nil, labels),
		RedisPersistentFailureError: prometheus.NewDesc("error_redis_persistent", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.UpForSeconds

	ch <- self.PublicationsStarted
	ch <- self.PublicationsResumed
	ch <- self.PublicationsDone
	ch <- self.PublicationsFailed
	ch <- self.Uploads
	ch <- self.Mints
	ch <- self.Approvals
	ch <- self.Listings
	ch <- self.TokenIdFromCounter
	ch <- self.MintsRecovered
	ch <- self.AveragePublicationsDonePerMinute

	ch <- self.MessagesPublished

	// Errors
	ch <- self.FailedStage
	ch <- self.ConfirmationTimeoutError
	ch <- self.JournalSaveError
	ch <- self.EventDroppedError
	ch <- self.RedisPublishError
	ch <- self.RedisPersistentFailureError
}

func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	run := &self.monitor.Report.Run.State
	state := &self.monitor.Report.Publisher.State
	errors := &self.monitor.Report.Publisher.Errors
	redis := self.monitor.Report.RedisPublisher

	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(run.UpForSeconds.Load()))

	ch <- prometheus.MustNewConstMetric(self.PublicationsStarted, prometheus.CounterValue, float64(state.PublicationsStarted.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublicationsResumed, prometheus.CounterValue, float64(state.PublicationsResumed.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublicationsDone, prometheus.CounterValue, float64(state.PublicationsDone.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublicationsFailed, prometheus.CounterValue, float64(state.PublicationsFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.Uploads, prometheus.CounterValue, float64(state.Uploads.Load()))
	ch <- prometheus.MustNewConstMetric(self.Mints, prometheus.CounterValue, float64(state.Mints.Load()))
	ch <- prometheus.MustNewConstMetric(self.Approvals, prometheus.CounterValue, float64(state.Approvals.Load()))
	ch <- prometheus.MustNewConstMetric(self.Listings, prometheus.CounterValue, float64(state.Listings.Load()))
	ch <- prometheus.MustNewConstMetric(self.TokenIdFromCounter, prometheus.CounterValue, float64(state.TokenIdFromCounter.Load()))
	ch <- prometheus.MustNewConstMetric(self.MintsRecovered, prometheus.CounterValue, float64(state.MintsRecovered.Load()))
	ch <- prometheus.MustNewConstMetric(self.AveragePublicationsDonePerMinute, prometheus.GaugeValue, state.AveragePublicationsDonePerMinute.Load())

	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(redis.State.MessagesPublished.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.FailedStage, prometheus.CounterValue, float64(errors.Validation.Load()), "validate")
	ch <- prometheus.MustNewConstMetric(self.FailedStage, prometheus.CounterValue, float64(errors.Session.Load()), "session")
	ch <- prometheus.MustNewConstMetric(self.FailedStage, prometheus.CounterValue, float64(errors.Upload.Load()), "upload")
	ch <- prometheus.MustNewConstMetric(self.FailedStage, prometheus.CounterValue, float64(errors.Mint.Load()), "mint")
	ch <- prometheus.MustNewConstMetric(self.FailedStage, prometheus.CounterValue, float64(errors.Approve.Load()), "approve")
	ch <- prometheus.MustNewConstMetric(self.FailedStage, prometheus.CounterValue, float64(errors.List.Load()), "list")
	ch <- prometheus.MustNewConstMetric(self.ConfirmationTimeoutError, prometheus.CounterValue, float64(errors.ConfirmationTimeout.Load()))
	ch <- prometheus.MustNewConstMetric(self.JournalSaveError, prometheus.CounterValue, float64(errors.JournalSave.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventDroppedError, prometheus.CounterValue, float64(errors.EventDropped.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPublishError, prometheus.CounterValue, float64(redis.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPersistentFailureError, prometheus.CounterValue, float64(redis.Errors.PersistentFailure.Load()))
}
