package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nfsync/nfsync/internal/secrets"
)

func init() {
	rootCmd.AddCommand(newPasswdCmd())
}

func newPasswdCmd() *cobra.Command {
	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "Manage the stored sudo password used for mounting",
	}

	passwdCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the sudo password (read from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			fmt.Fprint(cmd.OutOrStdout(), "password: ")
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.SetPassword(secrets.Encode(password)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("password stored"))
			return nil
		},
	})

	passwdCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored sudo password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.ClearPassword(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("password cleared"))
			return nil
		},
	})

	return passwdCmd
}
