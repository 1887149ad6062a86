package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/makotom/asnrank/asnrank"
)

var (
	BuildName       = "\b"
	BuildAnnotation = "git"
)

const defaultHistoryLimit = 20

type CmdOpts struct {
	configPath  string
	geoDB       string
	networks    []uint
	jsonOutput  bool
	showStats   bool
	historyPath string
	verbose     bool
	showVersion bool

	historyLimit int
	historyRun   int64
}

var ErrNoResults = errors.New("no matching results")

func setupLogging(verbose bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func loadConfig(cmd *cobra.Command, opts *CmdOpts) (*asnrank.Config, error) {
	config, err := asnrank.LoadConfig(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}

	if opts.geoDB != "" {
		config.GeoLite2ASN = opts.geoDB
	}
	if len(opts.networks) > 0 {
		networks, err := toASNs(opts.networks)
		if err != nil {
			return nil, err
		}
		config.Networks = networks
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func toASNs(networks []uint) ([]uint32, error) {
	ret := make([]uint32, 0, len(networks))

	for _, network := range networks {
		if network > math.MaxUint32 {
			return nil, errors.Errorf("network %d is not a valid ASN", network)
		}
		ret = append(ret, uint32(network))
	}

	return ret, nil
}

func readInput(arg string) ([]string, error) {
	var reader io.Reader = os.Stdin
	if arg != "-" {
		file, err := os.Open(arg)
		if err != nil {
			return nil, errors.Wrap(err, "could not open CSV")
		}
		defer file.Close()
		reader = file
	}

	lines, err := asnrank.ReadLines(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", arg)
	}

	return lines, nil
}

func readInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	stdinArgs := 0
	for _, arg := range args {
		if arg == "-" {
			stdinArgs += 1
		}
	}
	if stdinArgs > 1 {
		return nil, errors.New("stdin (-) can only be read once")
	}

	lines := []string{}

	for _, arg := range args {
		fileLines, err := readInput(arg)
		if err != nil {
			return nil, err
		}

		// every file carries its own header
		if len(lines) > 0 && len(fileLines) > 0 {
			fileLines = fileLines[1:]
		}
		lines = append(lines, fileLines...)
	}

	return lines, nil
}

func runRank(cmd *cobra.Command, opts *CmdOpts, args []string) error {
	config, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	resolver, err := asnrank.OpenGeoIPResolver(config.GeoLite2ASN)
	if err != nil {
		return err
	}
	defer resolver.Close()
	logrus.Debugf("Opened %s database %s", resolver.DatabaseType(), config.GeoLite2ASN)

	lines, err := readInputs(args)
	if err != nil {
		return err
	}

	pipeline := asnrank.NewPipeline(resolver, config.AllowedNetworks())
	results, stats, err := pipeline.Run(lines)
	if err != nil {
		return errors.Wrap(err, "ranking failed")
	}
	logrus.Infof("%d of %d rows accepted (%d malformed, %d non-public, %d unresolved, %d not allowed)",
		stats.Accepted, stats.Rows, stats.Malformed, stats.NotPublic, stats.NotFound, stats.NotAllowed)

	if len(results) == 0 {
		return ErrNoResults
	}

	if opts.historyPath != "" {
		history, err := asnrank.OpenHistory(opts.historyPath)
		if err != nil {
			return err
		}
		defer history.Close()

		runID, err := history.SaveRun(strings.Join(args, ","), time.Now(), stats, results)
		if err != nil {
			return errors.Wrap(err, "could not record run")
		}
		logrus.Debugf("Recorded run %d in %s", runID, opts.historyPath)
	}

	if opts.jsonOutput {
		return asnrank.WriteJSON(os.Stdout, results)
	}

	printer := log.New(os.Stdout, "", 0)
	asnrank.PrintResults(printer, results)
	if opts.showStats {
		printer.Println()
		asnrank.PrintSkipStats(printer, stats)
	}

	return nil
}

func runHistory(opts *CmdOpts) error {
	history, err := asnrank.OpenHistory(opts.historyPath)
	if err != nil {
		return err
	}
	defer history.Close()

	printer := log.New(os.Stdout, "", 0)

	if opts.historyRun > 0 {
		results, err := history.RunResults(opts.historyRun)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return errors.Wrapf(ErrNoResults, "run %d", opts.historyRun)
		}
		if opts.jsonOutput {
			return asnrank.WriteJSON(os.Stdout, results)
		}
		asnrank.PrintResults(printer, results)
		return nil
	}

	runs, err := history.Runs(opts.historyLimit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		printer.Printf("%d  %s  %d/%d rows  %s\n",
			run.ID, run.Timestamp.Format(time.RFC1123Z), run.Accepted, run.Rows, run.Source)
	}

	return nil
}

func newRootCmd() *cobra.Command {
	opts := &CmdOpts{}

	rootCmd := &cobra.Command{
		Use:           "asnrank [flags] [CSV_FILE...]",
		Short:         "Rank ISPs by average speed-test results per ASN",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(os.Stderr, "asnrank %s (%s)\n", BuildName, BuildAnnotation)
			if opts.showVersion {
				return nil
			}

			return runRank(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log skipped rows and other diagnostics")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.historyPath, "history", "", "SQLite file to record ranked runs in")

	rootCmd.Flags().StringVarP(&opts.configPath, "config", "c", asnrank.DefaultConfigPath, "TOML config file")
	rootCmd.Flags().StringVar(&opts.geoDB, "geodb", "", "GeoLite2-ASN database (overrides config)")
	rootCmd.Flags().UintSliceVarP(&opts.networks, "network", "n", nil, "Allowed ASN, repeatable (overrides config)")
	rootCmd.Flags().BoolVar(&opts.showStats, "stats", false, "Print row counts below the results")
	rootCmd.Flags().BoolVar(&opts.showVersion, "version", false, "Show version information and exit")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs or show one of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.historyPath == "" {
				return errors.New("--history is required")
			}
			return runHistory(opts)
		},
	}
	historyCmd.Flags().IntVar(&opts.historyLimit, "limit", defaultHistoryLimit, "Number of runs to list")
	historyCmd.Flags().Int64Var(&opts.historyRun, "run", 0, "Show the ranking stored for this run ID")

	rootCmd.AddCommand(historyCmd)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
