package publish

import (
	"github.com/warp-contracts/publisher/src/utils/config"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/monitoring"
	monitor_publisher "github.com/warp-contracts/publisher/src/utils/monitoring/publisher"
	"github.com/warp-contracts/publisher/src/utils/publisher"
	"github.com/warp-contracts/publisher/src/utils/task"
)

// Wires the publisher with its dependencies and the long lived services around it
type Controller struct {
	*task.Task

	Store     *ipfs.Client
	Session   *eth.Session
	Publisher *Publisher
	Monitor   *monitor_publisher.Monitor
	Server    *monitoring.Server

	identity eth.ChainIdentity
}

func NewController(config *config.Config, wallet eth.Wallet) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller").
		WithOnBeforeStart(self.connect)

	self.Monitor = monitor_publisher.NewMonitor().
		WithMaxHistorySize(30)

	// Rest API is optional for one-shot commands
	if config.RESTListenAddress != "" {
		self.Server = monitoring.NewServer(config).
			WithMonitor(self.Monitor)
	}

	self.Store = ipfs.NewClient(&config.Ipfs)

	self.Session = eth.NewSession(&config.Chain).
		WithWallet(wallet)

	self.Publisher = NewPublisher(config).
		WithContentStore(self.Store).
		WithChain(self.Session).
		WithMonitor(self.Monitor)

	journal, err := newJournal(self.Ctx, config)
	if err != nil {
		return nil, err
	}
	self.Publisher.WithJournal(journal)

	var notifier, server *task.Task
	if self.Server != nil {
		server = self.Server.Task
	}
	if config.Redis.Enabled {
		self.Publisher.WithEventChannel(config.Publisher.EventChannelSize)

		notifier = publisher.NewRedisPublisher[*Event](config, config.Redis, "redis-publisher").
			WithChannelName(config.Publisher.EventChannelName).
			WithInputChannel(self.Publisher.Events()).
			WithMonitor(self.Monitor).
			Task
	}

	self.Task = self.Task.
		WithSubtask(self.Monitor.Task).
		WithSubtask(self.Publisher.Task).
		WithSubtask(notifier).
		WithSubtask(server)

	return
}

// Connects the wallet before anything starts
func (self *Controller) connect() (err error) {
	self.identity, err = self.Session.Connect(self.Ctx)
	if err != nil {
		return
	}

	balance, err := self.Session.Balance(self.Ctx, self.identity)
	if err != nil {
		self.Log.WithError(err).Warn("Failed to get balance")
		return nil
	}

	log := self.Log.WithField("address", self.identity.Address.Hex()).WithField("balance", balance.String())
	if self.Session.IsBalanceLow(balance) {
		log.Warn("Balance is low, transactions may fail")
	} else {
		log.Info("Account balance")
	}
	return nil
}

// Identity of the connected wallet, zero before the controller starts
func (self *Controller) Identity() eth.ChainIdentity {
	return self.identity
}
