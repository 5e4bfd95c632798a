package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent payments for the active identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payments, err := client.History()
			if err != nil {
				return err
			}
			if len(payments) == 0 {
				fmt.Println("no payments yet")
				return nil
			}
			for _, p := range payments {
				line := fmt.Sprintf("%s  %8d sats  %-8s  %s", p.CreatedAt.Format("2006-01-02 15:04"), p.AmountSats, p.Status, p.ID)
				if p.Memo != "" {
					line += "  " + p.Memo
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
