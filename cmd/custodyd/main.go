package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/tendermint/tendermint/libs/log"
)

// config is read from the environment.
type config struct {
	Home        string `env:"CUSTODY_HOME" envDefault:"$HOME/.custody" envExpand:"true"`
	LogLevel    string `env:"CUSTODY_LOG_LEVEL" envDefault:"info"`
	AuditDB     string `env:"CUSTODY_AUDIT_DB"`
	ChainID     string `env:"CUSTODY_CHAIN_ID"`
	StrictNonce bool   `env:"CUSTODY_STRICT_NONCE"`
	Concurrency int    `env:"CUSTODY_CONCURRENCY" envDefault:"8"`
	MetricsFile string `env:"CUSTODY_METRICS_FILE"`
}

func helpMessage() {
	fmt.Println("custodyd")
	fmt.Println("        Multi-signature custody engine")
	fmt.Println("")
	fmt.Println("help    Print this message")
	fmt.Println("init    Load the genesis file into a new state")
	fmt.Println("apply   Apply transactions and commit the result")
	fmt.Println("query   Print the state stored under a path")
	fmt.Println("keygen  Generate an ed25519 key pair")
	fmt.Println(`
Environment:
  CUSTODY_HOME          directory to store files under (default "$HOME/.custody")
  CUSTODY_LOG_LEVEL     debug, info, error or none (default "info")
  CUSTODY_AUDIT_DB      sqlite file receiving the audit events
  CUSTODY_CHAIN_ID      refuse to run against a state of another chain
  CUSTODY_STRICT_NONCE  require creators to register before creating groups
  CUSTODY_CONCURRENCY   number of transactions applied in parallel (default 8)
  CUSTODY_METRICS_FILE  file receiving the metrics of an apply run`)
}

func main() {
	flag.CommandLine.Usage = helpMessage
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	var conf config
	if err := env.Parse(&conf); err != nil {
		fmt.Printf("Error: cannot read configuration: %s\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = cmdInit(conf, logger, rest)
	case "apply":
		err = cmdApply(conf, logger, os.Stdin, os.Stdout, rest)
	case "query":
		err = cmdQuery(conf, logger, os.Stdout, rest)
	case "keygen":
		err = cmdKeygen(os.Stdout, rest)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

// newLogger returns a logger writing to stderr, filtered to given level.
func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).With("module", "custodyd")
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}
