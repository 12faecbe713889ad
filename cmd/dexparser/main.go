package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavgrisyuk/solana-dex-parser-r/dexparser"
)

var (
	flagInput          string
	flagPretty         bool
	flagLogLevel       string
	flagTryUnknownDex  bool
	flagThrowError     bool
	flagNoAggregate    bool
	flagPrograms       []string
	flagIgnorePrograms []string
	flagSlot           uint64
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	root := &cobra.Command{
		Use:           "dexparser",
		Short:         "Decode DEX activity from Solana transaction JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if lvl, err := logrus.ParseLevel(flagLogLevel); err == nil {
				log.SetLevel(lvl)
			}
		},
	}
	root.PersistentFlags().StringVarP(&flagInput, "in", "i", "-", "input file, or - for stdin")
	root.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "indent JSON output")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", defaultLogLevel(), "logrus level")
	root.PersistentFlags().BoolVar(&flagTryUnknownDex, "try-unknown-dex", false, "run the balance-delta heuristic on unknown programs")
	root.PersistentFlags().BoolVar(&flagThrowError, "throw-error", false, "fail on view-building errors instead of emitting state=false")
	root.PersistentFlags().BoolVar(&flagNoAggregate, "no-aggregate", false, "skip the route-level aggregate trade")
	root.PersistentFlags().StringSliceVar(&flagPrograms, "program", nil, "restrict decoding to these program IDs")
	root.PersistentFlags().StringSliceVar(&flagIgnorePrograms, "ignore-program", nil, "skip these program IDs")

	parseTx := &cobra.Command{
		Use:   "parse-tx",
		Short: "Parse a single getTransaction result",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput()
			if err != nil {
				return err
			}
			var tx rpc.GetTransactionResult
			if err := json.Unmarshal(raw, &tx); err != nil {
				return fmt.Errorf("invalid transaction JSON: %w", err)
			}

			parser := dexparser.NewParser(dexparser.WithLogger(log))
			result, err := parser.ParseTransaction(&tx, buildConfig())
			if err != nil {
				return err
			}
			return writeOutput(result)
		},
	}

	parseBlock := &cobra.Command{
		Use:   "parse-block",
		Short: "Parse every transaction of a getBlock result",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput()
			if err != nil {
				return err
			}
			var block rpc.GetBlockResult
			if err := json.Unmarshal(raw, &block); err != nil {
				return fmt.Errorf("invalid block JSON: %w", err)
			}

			parser := dexparser.NewParser(dexparser.WithLogger(log))
			result, err := parser.ParseBlock(cmd.Context(), flagSlot, &block, buildConfig())
			if err != nil {
				return err
			}
			return writeOutput(result)
		},
	}
	parseBlock.Flags().Uint64Var(&flagSlot, "slot", 0, "slot of the block (getBlock omits it)")

	root.AddCommand(parseTx, parseBlock)

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func defaultLogLevel() string {
	if lvl := os.Getenv("DEXPARSER_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warning"
}

func buildConfig() *dexparser.ParseConfig {
	cfg := dexparser.DefaultConfig()
	cfg.TryUnknownDex = flagTryUnknownDex
	cfg.ThrowError = flagThrowError
	cfg.AggregateTrades = !flagNoAggregate
	cfg.Programs = flagPrograms
	cfg.IgnorePrograms = flagIgnorePrograms
	return cfg
}

func readInput() ([]byte, error) {
	if flagInput == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(flagInput)
}

func writeOutput(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	if flagPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
