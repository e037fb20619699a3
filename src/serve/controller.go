package serve

import (
	"github.com/gate33/learn2earn/src/distributor"
	"github.com/gate33/learn2earn/src/gateway"
	"github.com/gate33/learn2earn/src/learn2earn"
	"github.com/gate33/learn2earn/src/registry"
	"github.com/gate33/learn2earn/src/sync"
	"github.com/gate33/learn2earn/src/utils/config"
	"github.com/gate33/learn2earn/src/utils/model"
	"github.com/gate33/learn2earn/src/utils/monitoring"
	monitor_learn2earn "github.com/gate33/learn2earn/src/utils/monitoring/learn2earn"
	"github.com/gate33/learn2earn/src/utils/task"
)

// Main class that wires the whole service together: store, contract registry,
// chain client, domain services, reconciliation and both HTTP servers.
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	monitor := monitor_learn2earn.NewMonitor().
		WithMaxHistorySize(config.Monitoring.MaxHistorySize)

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	db, err := model.NewConnection(self.Ctx, config, "serve")
	if err != nil {
		return
	}

	contracts := registry.NewRegistry(config).
		WithDb(db).
		WithMonitor(monitor)

	client, err := distributor.NewClient(config)
	if err != nil {
		return
	}
	client.WithRegistry(contracts)

	tracker := learn2earn.NewTracker(config).
		WithDb(db).
		WithMonitor(monitor)

	claims, err := learn2earn.NewClaimService(config)
	if err != nil {
		return
	}
	claims.WithDb(db).
		WithDistributor(client).
		WithTracker(tracker).
		WithMonitor(monitor)

	manager := learn2earn.NewManager(config).
		WithDb(db).
		WithDistributor(client).
		WithRegistry(contracts).
		WithMonitor(monitor)

	engine := sync.NewEngine(config).
		WithDb(db).
		WithChainReader(client).
		WithMonitor(monitor)

	scheduler := sync.NewScheduler(config).
		WithEngine(engine)

	server := gateway.NewServer(config).
		WithClaimService(claims).
		WithTracker(tracker).
		WithManager(manager).
		WithEngine(engine).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(engine.Task).
		WithSubtask(scheduler.Task).
		WithSubtask(server.Task)

	return
}
