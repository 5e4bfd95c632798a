package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/spf13/cobra"

	"github.com/satspoint/SatsPoint/internal/keys"
)

func loginCmd() *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "login [secret-key]",
		Short: "Log in with a nostr secret key (hex or nsec), or generate a fresh one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			switch {
			case generate:
				kp := keys.Generate()
				secret = kp.SecretKey
				// show the new secret exactly once so the user can back it up
				if nsec, err := nip19.EncodePrivateKey(kp.SecretKey); err == nil {
					fmt.Printf("Generated new identity. Back up your secret key:\n  %s\n", nsec)
				}
			case len(args) == 1:
				secret = args[0]
			default:
				// read from stdin so the key stays out of shell history
				fmt.Fprint(os.Stderr, "Secret key (hex or nsec): ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				secret = strings.TrimSpace(line)
			}

			if err := identityStore.Login(secret); err != nil {
				return err
			}
			kp, err := identityStore.Keypair()
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", kp.Npub())
			return nil
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a new keypair instead of supplying one")
	return cmd
}
