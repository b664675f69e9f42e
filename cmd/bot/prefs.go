package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"torrentbot/internal/app"
	"torrentbot/internal/storage"
)

func newPrefsCommand(cfgPath *string) *cobra.Command {
	command := &cobra.Command{
		Use:   "prefs",
		Short: "Read or write the stored notification preferences",
	}

	openStore := func(cmd *cobra.Command) (*app.App, storage.Store, error) {
		a, err := app.New(cmd.Context(), *cfgPath, true)
		if err != nil {
			return nil, nil, err
		}
		if a.Store() == nil {
			_ = a.Close()
			return nil, nil, storage.ErrDisabled
		}
		return a, a.Store(), nil
	}

	command.AddCommand(&cobra.Command{
		Use:   "exists",
		Short: "Print whether preferences were ever saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := st.Exists(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	})

	command.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the stored preferences document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := st.Load(cmd.Context())
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no preferences saved yet: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(p))
			return nil
		},
	})

	var timeout time.Duration
	set := &cobra.Command{
		Use:   "set <json|->",
		Short: "Replace the stored preferences document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			doc := []byte(args[0])
			if strings.TrimSpace(args[0]) == "-" {
				if doc, err = readInput(cmd.InOrStdin(), "-"); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			select {
			case err := <-storage.SaveAsync(ctx, st, storage.Preferences(doc), a.Logger()):
				return err
			case <-ctx.Done():
				return fmt.Errorf("save: %w", ctx.Err())
			}
		},
	}
	set.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "give up waiting for the backend after this long")
	command.AddCommand(set)

	return command
}
