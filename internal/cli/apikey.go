package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/auth"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list and revoke API keys. These commands work directly on the database, so run them on the server host.",
	}

	var owner string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPIKeyCreate(cmd, args[0], owner)
		},
	}
	create.Flags().StringVar(&owner, "owner", "", "who uses the key; recorded when acknowledging alerts (default: name)")

	cmd.AddCommand(
		create,
		&cobra.Command{
			Use:   "list",
			Short: "List API keys",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAPIKeyList(cmd)
			},
		},
		&cobra.Command{
			Use:   "revoke <id>",
			Short: "Revoke an API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAPIKeyRevoke(cmd, args[0])
			},
		},
	)

	return cmd
}

func runAPIKeyCreate(cmd *cobra.Command, name, owner string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	raw, key, err := auth.NewAPIKeyStore(database).Create(name, owner)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(w, struct {
			*auth.APIKey
			Key string `json:"key"`
		}{key, raw})
	}

	fmt.Fprintf(w, "Created API key #%d (%s, owner %s)\n\n  %s\n\n", key.ID, key.Name, key.Owner, raw)
	fmt.Fprintln(w, "Store it now; it cannot be shown again. Use it with:")
	fmt.Fprintln(w, "  fd config set api_key <key>")
	return nil
}

func runAPIKeyList(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	keys, err := auth.NewAPIKeyStore(database).List()
	if err != nil {
		return err
	}
	if keys == nil {
		keys = []auth.APIKey{}
	}

	return output(cmd.OutOrStdout(), keys, func(w io.Writer) error {
		if len(keys) == 0 {
			fmt.Fprintln(w, "No API keys.")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, "ID\tNAME\tOWNER\tPREFIX\tCREATED\tLAST USED"); err != nil {
			return fmt.Errorf("writing table header: %w", err)
		}
		for _, k := range keys {
			lastUsed := "never"
			if k.LastUsedAt != nil {
				lastUsed = localTime(*k.LastUsedAt)
			}
			if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s…\t%s\t%s\n",
				k.ID, k.Name, k.Owner, k.KeyPrefix, localTime(k.CreatedAt), lastUsed); err != nil {
				return fmt.Errorf("writing table row: %w", err)
			}
		}
		return tw.Flush()
	})
}

func runAPIKeyRevoke(cmd *cobra.Command, idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid key ID: %s", idArg)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	if err := auth.NewAPIKeyStore(database).Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Revoked API key #%d.\n", id)
	return nil
}
