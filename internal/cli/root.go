// Package cli defines the cobra command tree for front-desk.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/client"
	"github.com/evcraddock/front-desk/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fd",
		Short:         "Front-office visitor management",
		Long:          "Register visitors, check them out, watch for overstays and report on visit durations. Runs the API server and talks to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/fd/visitors.db)")

	root.AddCommand(
		newRegisterCmd(),
		newCheckoutCmd(),
		newListCmd(),
		newShowCmd(),
		newPassCmd(),
		newExtendCmd(),
		newSweepCmd(),
		newAckCmd(),
		newAnalyticsCmd(),
		newReportCmd(),
		newServeCmd(),
		newAPIKeyCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the front-desk API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getAPIKey())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// output prints v as JSON or through the text printer.
func output(w io.Writer, v interface{}, text func(io.Writer) error) error {
	if isJSON() {
		return printJSON(w, v)
	}
	return text(w)
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// checkDate validates a YYYY-MM-DD flag value. Empty is allowed.
func checkDate(flag, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("--%s must be YYYY-MM-DD, got %q", flag, value)
	}
	return nil
}
