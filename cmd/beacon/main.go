package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/beacon/internal/browser/common/log"
	"github.com/haukened/beacon/internal/browser/config"
	"github.com/haukened/beacon/internal/browser/services/navigator"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "beacon"

	defaultShutdownTimeout = 10 * time.Second
	defaultRecentBlocked   = 20
)

// ErrJournalDisabled is returned by commands that need the blocked-attempt
// journal when journal_path is unset.
var ErrJournalDisabled = errors.New("journal disabled: set BEACON_JOURNAL_PATH")

// cli carries the configuration loaded by the root command to its subcommands.
type cli struct {
	cfg *config.AppConfig
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Beacon - a filtered browser shell",
		Version:       version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
				return fmt.Errorf("logging configuration error: %w", err)
			}
			c.cfg = cfg
			return nil
		},
	}
	root.AddCommand(c.classifyCmd(), c.blockedCmd(), c.browseCmd())
	return root
}

func (c *cli) classifyCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "classify <address...>",
		Short: "Print the classifier's verdict for each address",
		Long: `Resolves each argument the way the address bar does and prints whether
the resulting destination is allowed or blocked, and by which fragment.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := buildClassifier(c.cfg, log.GetLogger())
			if err != nil {
				return err
			}
			resolver := navigator.NewResolver(c.cfg.SearchEndpoint)
			return classify(cmd.OutOrStdout(), classifier, resolver, args, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "classify arguments as given, without address resolution")
	return cmd
}

func classify(w io.Writer, classifier navigator.Classifier, resolver *navigator.Resolver, args []string, raw bool) error {
	for _, arg := range args {
		target := arg
		if !raw {
			resolved, home := resolver.Resolve(arg)
			if home {
				if _, err := fmt.Fprintf(w, "home\t%q\n", arg); err != nil {
					return err
				}
				continue
			}
			target = resolved
		}
		v := classifier.Classify(target)
		var err error
		if v.Blocked {
			_, err = fmt.Fprintf(w, "blocked\t%s\t%s (%s, %s)\n", target, v.MatchedReason, v.Kind, v.Source)
		} else {
			_, err = fmt.Fprintf(w, "allowed\t%s\n", target)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) blockedCmd() *cobra.Command {
	var (
		n     int
		sites bool
	)
	cmd := &cobra.Command{
		Use:   "blocked",
		Short: "List recently blocked navigation attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.JournalPath == "" {
				return ErrJournalDisabled
			}
			j, err := openJournal(c.cfg, log.GetLogger())
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			return printBlocked(cmd.OutOrStdout(), j, n, sites)
		},
	}
	cmd.Flags().IntVarP(&n, "n", "n", defaultRecentBlocked, "number of entries to show")
	cmd.Flags().BoolVar(&sites, "sites", false, "also print per-site totals")
	return cmd
}

func (c *cli) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [address]",
		Short: "Open a filtered browser window driven from standard input",
		Long: `Launches the rendering engine and reads one command per line:

  go <address>      load an address or search phrase
  search <phrase>   search from the start page
  back | forward    move through history
  reload | stop     reload the page or stop loading
  refresh           reload, or stop while loading
  home              return to the start page
  links | link <n>  list or open the start page quick links
  history           show recently blocked attempts
  state             print the navigation state
  quit              close the browser`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApplication(c.cfg, log.GetLogger())
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					log.Warn(map[string]any{"error": err}, "close_failed")
				}
			}()
			start := strings.Join(args, " ")
			return app.Run(cmd.Context(), start, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// sortedSites returns the site names of counts ordered by descending count,
// then name.
func sortedSites(counts map[string]uint64) []string {
	names := make([]string, 0, len(counts))
	for s := range counts {
		names = append(names, s)
	}
	slices.SortFunc(names, func(a, b string) int {
		if counts[a] != counts[b] {
			if counts[a] > counts[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return names
}
