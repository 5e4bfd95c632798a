package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := identityStore.Keypair()
			if err != nil {
				return err
			}
			fmt.Printf("npub: %s\nhex:  %s\n", kp.Npub(), kp.PublicKey)
			return nil
		},
	}
}
