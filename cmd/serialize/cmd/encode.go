/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
	"github.com/LeDuy-Vu/serialize-this/pkg/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEncodeCmd(a *app) *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode <format> [name=value...]",
		Short: "Encode field values into a packet",
		Long: `Encode field values into a packet using a catalogue format. Fields
that are not given stay zero.

Values are decimal integers, 0b bit-strings or 0x hex bytes.

Examples:
  serialize encode header type=5 len=3 payload=171
  serialize encode header type=0b0101 len=3 payload=0xab --archive
  serialize encode frame size=2 body=0xcafe --raw > frame.bin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetBool("raw")
			archive, _ := cmd.Flags().GetBool("archive")
			fullRange, _ := cmd.Flags().GetBool("full-range")

			var opts []codec.Option
			if fullRange {
				opts = append(opts, codec.WithFullSignedRange())
			}
			ser, err := a.newSerializer(args[0], opts...)
			if err != nil {
				return err
			}

			for _, arg := range args[1:] {
				name, value, err := parseAssignment(arg)
				if err != nil {
					return err
				}
				if err := ser.SetField(name, value); err != nil {
					return err
				}
			}

			packet, err := ser.ToBytes()
			if err != nil {
				return err
			}
			a.log.Debug("encoded packet", zap.String("format", args[0]), zap.Int("bytes", len(packet)))

			if archive {
				store, err := a.openArchive()
				if err != nil {
					return err
				}
				defer store.Close()

				id, err := store.Put(&storage.Packet{Format: args[0], Data: packet})
				if err != nil {
					return fmt.Errorf("failed to archive packet: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Archived as %s\n", id)
			}

			if raw {
				_, err = cmd.OutOrStdout().Write(packet)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(packet))
			return nil
		},
	}

	encodeCmd.Flags().Bool("raw", false, "Write the packet as raw bytes instead of hex")
	encodeCmd.Flags().Bool("archive", false, "Store the packet in the archive")
	encodeCmd.Flags().Bool("full-range", false, "Encode negatives as two's complement and accept -(2^(w-1))")
	return encodeCmd
}
