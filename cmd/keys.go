package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wonder-codes/echo-repo/internal/services"
)

func init() {
	keysCmd.AddCommand(keysSetCmd, keysDeleteCmd, keysListCmd)
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage credentials stored in the OS keyring",
	Long: `Credentials are looked up in the OS keyring when they are not set in the
environment or config file. Use the provider name (openai, anthropic, gemini)
for model API keys and "github" for the repository token.`,
}

var keysSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a credential read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.Wrap(err, "read credential from stdin")
		}
		key := strings.TrimSpace(line)
		if err := services.NewKeyringService().StoreApiKey(args[0], []byte(key)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.NewKeyringService().DeleteApiKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential names",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := services.NewKeyringService().ListApiKeys()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}
