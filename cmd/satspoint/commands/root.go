package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satspoint/SatsPoint/internal"
	"github.com/satspoint/SatsPoint/internal/auth"
	"github.com/satspoint/SatsPoint/internal/identity"
	"github.com/satspoint/SatsPoint/internal/payclient"
)

var (
	serverURL string

	identityStore *identity.Store
	client        *payclient.Client
)

func Execute() error {
	root := &cobra.Command{
		Use:           "satspoint",
		Short:         "Lightning point-of-sale terminal authenticated with nostr keys",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			sessionPath := internal.Configuration.Database.SessionDbPath
			if err := os.MkdirAll(filepath.Dir(sessionPath), 0o700); err != nil {
				return err
			}
			store, err := identity.NewStore(sessionPath)
			if err != nil {
				return err
			}
			identityStore = store

			if serverURL == "" {
				serverURL = internal.Configuration.Pos.ServerUrl
			}
			client = payclient.NewClient(serverURL, auth.Authenticator{Store: identityStore})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if identityStore != nil {
				identityStore.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "", "payment service base URL (default from config)")

	root.AddCommand(loginCmd(), logoutCmd(), whoamiCmd(), posCmd(), payCmd(), historyCmd(), serveCmd())
	return root.Execute()
}
