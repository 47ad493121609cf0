package monitor_publisher

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/warp-contracts/publisher/src/utils/monitoring/report"
	"github.com/warp-contracts/publisher/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	collector *Collector

	mtx           sync.Mutex
	historySize   int
	DoneCounts    *deque.Deque[uint64]
	JournalErrors *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Publisher:      &report.PublisherReport{},
		RedisPublisher: &report.RedisPublisherReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorPublications).
		WithPeriodicSubtaskFunc(time.Minute, self.monitorJournal)

	return self.WithMaxHistorySize(10)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.historySize = maxHistorySize
	self.DoneCounts = deque.New[uint64](maxHistorySize)
	self.JournalErrors = deque.New[uint64](maxHistorySize)

	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Appends the value and returns the difference between the newest and the oldest sample
func (self *Monitor) push(history *deque.Deque[uint64], value uint64) uint64 {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	history.PushBack(value)
	if history.Len() > self.historySize {
		history.PopFront()
	}
	return history.Back() - history.Front()
}

// Measure publication speed
func (self *Monitor) monitorPublications() (err error) {
	loaded := self.Report.Publisher.State.PublicationsDone.Load()
	delta := self.push(self.DoneCounts, loaded)

	self.mtx.Lock()
	n := self.DoneCounts.Len()
	self.mtx.Unlock()

	self.Report.Publisher.State.AveragePublicationsDonePerMinute.Store(round(float64(delta) / float64(n)))
	return
}

// Count journal failures within the history window
func (self *Monitor) monitorJournal() (err error) {
	loaded := self.Report.Publisher.Errors.JournalSave.Load()
	self.Report.Publisher.State.RecentJournalErrors.Store(self.push(self.JournalErrors, loaded))
	return
}

// Publications still succeed when the journal fails, but they can't be resumed
func (self *Monitor) IsOK() bool {
	return self.Report.Publisher.State.RecentJournalErrors.Load() == 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
