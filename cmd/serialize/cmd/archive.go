/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/LeDuy-Vu/serialize-this/pkg/config"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

func newArchiveCmd(a *app) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage archived packets",
		Long: `Store, inspect and remove packets in the local archive configured under
storage in the config file.`,
	}

	archiveCmd.AddCommand(
		newArchivePutCmd(a),
		newArchiveGetCmd(a),
		newArchiveListCmd(a),
		newArchiveDeleteCmd(a),
	)
	return archiveCmd
}

func newArchivePutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <format> <hex>",
		Short: "Archive a packet",
		Long: `Archive a packet after checking that it decodes with the format.

Example:
  serialize archive put header 53ab`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packet, err := parsePacket(args[1])
			if err != nil {
				return err
			}

			ser, err := a.newSerializer(args[0])
			if err != nil {
				return err
			}
			if err := ser.FromBytes(packet, 0); err != nil {
				return err
			}

			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.Put(&storage.Packet{Format: args[0], Data: packet})
			if err != nil {
				return fmt.Errorf("failed to archive packet: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newArchiveGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an archived packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid packet ID %q: %w", args[0], err)
			}

			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.Get(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", p.ID)
			fmt.Fprintf(out, "Format:  %s\n", p.Format)
			fmt.Fprintf(out, "Created: %s\n", p.CreatedAt.UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "Packet:  %s\n", hex.EncodeToString(p.Data))

			ser, err := a.newSerializer(p.Format)
			if errors.Is(err, config.ErrFormatNotFound) {
				fmt.Fprintf(out, "(format %q is no longer in the catalogue)\n", p.Format)
				return nil
			}
			if err != nil {
				return err
			}
			if err := ser.FromBytes(p.Data, 0); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return printFields(out, ser.Data())
		},
	}
}

func newArchiveListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived packet IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer store.Close()

			ids, err := store.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newArchiveDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid packet ID %q: %w", args[0], err)
			}

			store, err := a.openArchive()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}
