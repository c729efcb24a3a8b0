package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored API key is valid.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	apiKey := getAPIKey()

	fmt.Fprintf(w, "Server:  %s\n", getServerURL())

	if apiKey == "" {
		fmt.Fprintln(w, "API Key: not configured")
		fmt.Fprintln(w, "\nCreate one on the server with 'fd apikey create <name>', then 'fd config set api_key <key>'.")
		return nil
	}
	fmt.Fprintf(w, "API Key: %s\n", maskKey(apiKey))

	_, err := newAPIClient().ListVisitors(cmd.Context(), client.ListParams{Limit: 1})
	var apiErr *client.APIError
	switch {
	case err == nil:
		fmt.Fprintln(w, "Status:  ✓ connected and authenticated")
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		fmt.Fprintln(w, "Status:  ✗ invalid API key")
	case errors.As(err, &apiErr):
		fmt.Fprintf(w, "Status:  ✗ unexpected response (%d)\n", apiErr.StatusCode)
	default:
		fmt.Fprintf(w, "Status:  ✗ cannot reach server (%v)\n", err)
	}

	return nil
}
