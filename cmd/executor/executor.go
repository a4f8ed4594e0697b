package executor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"signalengine/src/connectors"
	"signalengine/src/database"
	"signalengine/src/executors"
	"signalengine/src/monitoring"
	"signalengine/src/position"
	"signalengine/src/repository"
	"signalengine/src/risk"
	"signalengine/src/server"
	"signalengine/src/websocket"
)

type Executor struct{}

func (t *Executor) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	return t.Run(ctx)
}

// Run wires the engine from env config and blocks until ctx is canceled.
func (t *Executor) Run(ctx context.Context) error {
	config := executors.GetConfig()
	cmdConfig := GetConfig()
	riskConfig := risk.GetConfig()
	log := logrus.WithField("cmd", "executor")

	var db *gorm.DB
	if database.GetConfig().EnableDB {
		// Initialize main (read/write) database
		if err := database.InitMainDB(); err != nil {
			log.WithError(err).Error("Failed to connect to main database")
			return err
		}
		db = database.MainDB
	}

	opts := executors.Options{
		Risk:           riskConfig,
		Position:       position.GetConfig(),
		Executor:       connectors.NewSimulator(connectors.GetConfig(), log),
		InitialBalance: config.InitialBalance,
		QueueSize:      config.QueueSize,
		Logger:         log,
	}
	if riskConfig.SessionFilter {
		opts.Market = risk.NewSessionCondition()
	}

	sources := executors.Sources{Symbols: config.Symbols}
	if db != nil {
		records := (&repository.ExecutionLogRepository{}).WithDB(db)
		seq, err := records.LastSequence(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to read last execution sequence")
			return err
		}
		opts.Recorder = records
		opts.SequenceStart = seq
		sources.Signals = append(sources.Signals, (&repository.TradingSignalRepository{}).WithDB(db))
	}

	prices, err := newPriceSource(config.PriceFeed, db)
	if err != nil {
		return err
	}
	sources.Prices = prices

	engine := executors.NewEngine(opts)
	if db != nil {
		engine.AddObserver(executors.ExceptionObserver{Store: repository.NewExceptionRepositoryWithDB(db)})
	}

	reg := prometheus.NewRegistry()
	var metrics *monitoring.Metrics
	if cmdConfig.EnableMetrics {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = monitoring.NewMetrics(reg)
		engine.AddObserver(metrics)
	}

	var hub *websocket.Hub
	if cmdConfig.EnableWebsocket {
		hub = websocket.NewHub()
		engine.AddObserver(hub)
	}

	if notifier := connectors.NewDashboardNotifier(connectors.GetConfig()); notifier.Enabled() {
		engine.AddObserver(executors.DashboardObserver{Notifier: notifier})
	}

	log.WithFields(logrus.Fields{
		"priceFeed":      config.PriceFeed,
		"initialBalance": config.InitialBalance,
		"db":             db != nil,
	}).Info("Starting signal engine")

	g, ctx := errgroup.WithContext(ctx)
	if hub != nil {
		g.Go(func() error {
			hub.Run(ctx)
			return nil
		})
	}
	if srvConfig := server.GetConfig(); srvConfig.EnableHTTP {
		deps := server.Deps{Engine: engine, Hub: hub}
		if metrics != nil {
			deps.Gatherer = reg
		}
		g.Go(func() error {
			return server.StartServer(ctx, srvConfig.Port, server.NewRouter(deps))
		})
	}
	g.Go(func() error {
		var cycles executors.CycleObserver
		if metrics != nil {
			cycles = metrics
		}
		if err := executors.StartLoop(ctx, engine, sources, config.LoopPeriod, cycles); err != nil {
			log.WithError(err).Error("Failed to start engine loop")
			return err
		}
		return nil
	})
	return g.Wait()
}

func newPriceSource(feed string, db *gorm.DB) (executors.PriceSource, error) {
	switch feed {
	case executors.PriceFeedDB:
		if db == nil {
			return nil, fmt.Errorf("price feed %q requires ENABLE_DB=true", feed)
		}
		return repository.NewOHLCVRepositoryWithDB(db), nil
	case executors.PriceFeedExchange:
		return connectors.NewExchangePriceSource(connectors.GetConfig()), nil
	case executors.PriceFeedNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown price feed %q", feed)
	}
}
