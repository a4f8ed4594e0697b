package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signalengine/cmd/executor"
	"signalengine/cmd/ohlcvcrypto"
	"signalengine/cmd/simulate"
	"signalengine/src/database"
	"signalengine/src/position"
	"signalengine/src/repository"
	"signalengine/src/risk"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Signal Engine CMD"
	app.Usage = "The signal engine command line interface"
	app.Version = Version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "env file loaded before the command runs, when present",
		},
	}
	app.Before = func(c *cli.Context) error {
		if err := godotenv.Load(c.GlobalString("env-file")); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	app.Commands = []cli.Command{
		executorCMD,
		simulateCMD,
		ohlcvCryptoCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	executorCMD = cli.Command{
		Name:        "executor",
		Usage:       "run the signal engine",
		Action:      executorAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the engine loop with the HTTP API, metrics and websocket stream`,
	}
	simulateCMD = cli.Command{
		Name:      "simulate",
		Usage:     "replay a JSON scenario through the engine",
		Action:    simulateAction,
		ArgsUsage: "<scenario.json>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "verbose", Usage: "log engine activity while replaying"},
		},
		Description: `Replay signals and price ticks on a virtual clock and print the outcome`,
	}
	ohlcvCryptoCMD = cli.Command{
		Name:        "ohlcv_crypto",
		Usage:       "run OHLCV crypto",
		Action:      ohlcvCryptoAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Collect one-minute candles for SYMBOLS into the price table`,
	}
)

func executorAction(_ *cli.Context) error {

	logrus.Info("Starting executor CMD")

	executorStrategy := &executor.Executor{}
	err := executorStrategy.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func simulateAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.NewExitError("scenario file required", 2)
	}

	scenario, err := simulate.LoadScenario(path)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	report := simulate.Run(context.Background(), scenario, risk.GetConfig(), position.GetConfig(), logrus.NewEntry(log).WithField("cmd", "simulate"))
	simulate.Render(os.Stdout, report)
	return nil
}

// ohlcvCryptoAction collects one-minute candles for the configured symbols
func ohlcvCryptoAction(_ *cli.Context) error {

	logrus.Info("Starting OHLCV crypto CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ohlcv := &ohlcvcrypto.OHLCVCrypto{
		Log:   logrus.WithField("cmd", "ohlcv_crypto"),
		Store: repository.NewOHLCVRepositoryWithDB(database.MainDB),
	}

	err := _ohlcv.Start(ctx)
	if err != nil {
		logrus.WithError(err).Error("Starting OHLCV cmd")
		return err
	}

	return nil
}
