package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spectrail/spectrail/internal/config"
	"github.com/spectrail/spectrail/internal/journal"
)

var (
	journalSession string
	journalLimit   int
	exportFormat   string
	exportOutput   string
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the persisted step journal",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent step activity, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err := listEntries(store)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tKIND\tSESSION\tSAMPLES\tDESCRIPTION")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.RecordedAt.Local().Format(time.DateTime),
				e.Kind, shortToken(e.SessionToken), e.Samples, e.Description)
		}
		return w.Flush()
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export step activity as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err := listEntries(store)
		if err != nil {
			return err
		}

		var data []byte
		switch exportFormat {
		case "json":
			data, err = json.MarshalIndent(entries, "", "  ")
		case "yaml":
			data, err = yaml.Marshal(entries)
		default:
			return fmt.Errorf("unknown export format %q (want json or yaml)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("encoding journal entries: %w", err)
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(exportOutput, data, 0o644)
	},
}

var journalCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the total number of journaled events",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openJournal()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		n, err := store.Count()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	journalCmd.PersistentFlags().StringVar(&journalSession, "session", "", "filter by session token")
	journalCmd.PersistentFlags().IntVar(&journalLimit, "limit", 50, "maximum entries")
	journalExportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json or yaml")
	journalExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")

	journalCmd.AddCommand(journalListCmd, journalExportCmd, journalCountCmd)
	rootCmd.AddCommand(journalCmd)
}

// openJournal opens the configured journal store.
func openJournal() (*journal.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("journal is disabled in configuration")
	}
	path := cfg.Journal.Path
	if path == "" {
		path, err = config.DefaultJournalPath()
		if err != nil {
			return nil, err
		}
	}
	return journal.Open(path)
}

func listEntries(store *journal.Store) ([]journal.Entry, error) {
	if journalSession != "" {
		return store.ListBySession(journalSession, journalLimit)
	}
	return store.List(journalLimit)
}

// shortToken abbreviates a session token for tabular display.
func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
