package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	custodyd "github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x/audit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

// node holds an engine over the persistent state of the home directory.
type node struct {
	engine  *app.Engine
	metrics *prometheus.Registry
	closer  func()
}

func openNode(conf config, logger log.Logger) (*node, error) {
	kv, err := iavl.OpenCommitStore("custody", filepath.Join(conf.Home, "data"))
	if err != nil {
		return nil, errors.Wrap(err, "open state")
	}

	sinks := audit.Multi{audit.NewLogSink(logger)}
	reg := prometheus.NewRegistry()
	metricsSink, err := audit.NewMetricsSink(reg)
	if err != nil {
		kv.Close()
		return nil, err
	}
	sinks = append(sinks, metricsSink)
	closer := kv.Close
	if conf.AuditDB != "" {
		sqlite, err := audit.OpenSQLiteSink(conf.AuditDB)
		if err != nil {
			kv.Close()
			return nil, err
		}
		sinks = append(sinks, sqlite)
		closer = func() {
			if err := sqlite.Close(); err != nil {
				logger.Error("cannot close audit database", "err", err)
			}
			kv.Close()
		}
	}

	e, err := custodyd.NewEngine(kv, custodyd.Config{
		Strict:      conf.StrictNonce,
		Registerer:  reg,
		Sink:        sinks,
		Logger:      logger,
		Concurrency: conf.Concurrency,
	})
	if err != nil {
		closer()
		return nil, err
	}
	return &node{engine: e, metrics: reg, closer: closer}, nil
}

// checkChain returns an error if the state belongs to another chain than
// the configured one.
func (n *node) checkChain(conf config) error {
	got := n.engine.ChainID()
	if got == "" {
		return errors.Wrap(errors.ErrState, "state not initialized, run init first")
	}
	if conf.ChainID != "" && conf.ChainID != got {
		return errors.Wrapf(errors.ErrState, "state belongs to chain %q, not %q", got, conf.ChainID)
	}
	return nil
}

func cmdInit(conf config, logger log.Logger, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: custodyd init <genesis.json>")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.Wrap(errors.ErrInput, "genesis file required")
	}

	gen, err := app.LoadGenesis(fs.Arg(0))
	if err != nil {
		return err
	}
	if conf.ChainID != "" && conf.ChainID != gen.ChainID {
		return errors.Wrapf(errors.ErrInput, "genesis is for chain %q, not %q", gen.ChainID, conf.ChainID)
	}

	n, err := openNode(conf, logger)
	if err != nil {
		return err
	}
	defer n.closer()
	if err := n.engine.InitChain(context.Background(), gen); err != nil {
		return err
	}
	_, err = n.engine.Commit()
	return err
}

// applyResult is printed for every applied transaction.
type applyResult struct {
	Path   string           `json:"path"`
	Data   custody.HexBytes `json:"data,omitempty"`
	Events []custody.Event  `json:"events,omitempty"`
	Error  string           `json:"error,omitempty"`
	Code   uint32           `json:"code,omitempty"`
}

func cmdApply(conf config, logger log.Logger, input io.Reader, output io.Writer, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `usage: custodyd apply [-time RFC3339] [tx.json...]

Transactions are read from the given files, or one per line from the
standard input.`)
		fs.PrintDefaults()
	}
	var (
		atFl    = fs.String("time", "", "block time used to evaluate expiry, defaults to now")
		checkFl = fs.Bool("check", false, "only check the transactions, do not apply them")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now().UTC()
	if *atFl != "" {
		t, err := time.Parse(time.RFC3339, *atFl)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "time: %s", err)
		}
		now = t
	}

	txs, err := readTxs(input, fs.Args())
	if err != nil {
		return err
	}

	n, err := openNode(conf, logger)
	if err != nil {
		return err
	}
	defer n.closer()
	if err := n.checkChain(conf); err != nil {
		return err
	}

	ctx := context.Background()
	results := make([]applyResult, len(txs))
	if *checkFl {
		for i, tx := range txs {
			results[i].Path = custody.GetPath(tx)
			if _, err := n.engine.Check(ctx, tx, now); err != nil {
				results[i].setErr(err)
			}
		}
		return printJSON(output, results)
	}

	for i, r := range n.engine.DeliverBatch(ctx, txs, now) {
		results[i].Path = custody.GetPath(txs[i])
		if r.Err != nil {
			results[i].setErr(r.Err)
			continue
		}
		results[i].Data = r.Res.Data
		results[i].Events = r.Res.Events
	}
	if _, err := n.engine.Commit(); err != nil {
		return err
	}
	if err := n.writeMetrics(conf); err != nil {
		return err
	}
	return printJSON(output, results)
}

// writeMetrics exports the metrics collected by this process in the text
// exposition format, for a textfile collector to pick up.
func (n *node) writeMetrics(conf config) error {
	if conf.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(conf.MetricsFile, n.metrics); err != nil {
		return errors.Wrapf(errors.ErrHuman, "write metrics: %s", err)
	}
	return nil
}

func (r *applyResult) setErr(err error) {
	r.Error = errors.Redact(err).Error()
	r.Code = errors.Code(err)
}

func readTxs(input io.Reader, files []string) ([]custody.Tx, error) {
	var raws [][]byte
	if len(files) == 0 {
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := scanner.Bytes(); len(line) > 0 {
				raws = append(raws, append([]byte(nil), line...))
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "read input: %s", err)
		}
	}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "read %s: %s", f, err)
		}
		raws = append(raws, raw)
	}

	txs := make([]custody.Tx, 0, len(raws))
	for i, raw := range raws {
		tx, err := custodyd.DecodeTx(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func cmdQuery(conf config, logger log.Logger, output io.Writer, args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `usage: custodyd query <path> <argument>

Paths:
  wallet <address>    account <id>      group <key>
  groups <address>    request <key>     requests <group key>
  config request`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.Wrap(errors.ErrInput, "path and argument required")
	}

	n, err := openNode(conf, logger)
	if err != nil {
		return err
	}
	defer n.closer()
	if err := n.checkChain(conf); err != nil {
		return err
	}

	var res interface{}
	err = n.engine.View(func(db custody.ReadOnlyKVStore) error {
		var err error
		res, err = custodyd.Query(db, fs.Arg(0), fs.Arg(1))
		return err
	})
	if err != nil {
		return err
	}
	return printJSON(output, res)
}

func cmdKeygen(output io.Writer, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	addr := custody.PubKeyCondition(pub).Address()
	bech, err := addr.Bech32String()
	if err != nil {
		return err
	}
	return printJSON(output, map[string]string{
		"public_key":  hex.EncodeToString(pub),
		"private_key": hex.EncodeToString(priv),
		"address":     addr.String(),
		"bech32":      bech,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	return nil
}
