/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode <format> <hex>",
		Short: "Decode a hex packet into its fields",
		Long: `Decode a hex packet with a catalogue format and print each field's
bits and unsigned value.

Examples:
  serialize decode header 53ab
  serialize decode header ff53ab --index 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _ := cmd.Flags().GetInt("index")

			packet, err := parsePacket(args[1])
			if err != nil {
				return err
			}

			ser, err := a.newSerializer(args[0])
			if err != nil {
				return err
			}
			if err := ser.FromBytes(packet, index); err != nil {
				return err
			}

			return printFields(cmd.OutOrStdout(), ser.Data())
		},
	}

	decodeCmd.Flags().IntP("index", "i", 0, "Byte offset to start decoding at")
	return decodeCmd
}
