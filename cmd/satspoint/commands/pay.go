package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satspoint/SatsPoint/internal/lightning"
	"github.com/satspoint/SatsPoint/internal/qr"
)

// payCmd inspects a scanned payload (QR image file or pasted string)
// and hands a recognized invoice off to an external wallet via the
// lightning: URI. The terminal itself never spends.
func payCmd() *cobra.Command {
	var imagePath string
	cmd := &cobra.Command{
		Use:   "pay [invoice-or-lnurl]",
		Short: "Decode a payment QR or bolt11 invoice and print the wallet handoff URI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload string
			switch {
			case imagePath != "":
				decoded, err := qr.DecodeFile(imagePath)
				if err != nil {
					return err
				}
				payload = decoded
			case len(args) == 1:
				payload = args[0]
			default:
				return fmt.Errorf("supply an invoice or --image")
			}

			switch {
			case lightning.IsInvoice(payload):
				bolt11 := lightning.StripURI(payload)
				inv, err := lightning.DecodeInvoice(bolt11)
				if err != nil {
					return fmt.Errorf("invalid invoice: %w", err)
				}
				fmt.Printf("invoice: %d sats\n", inv.AmountSats)
				if inv.Memo != "" {
					fmt.Printf("memo:    %s\n", inv.Memo)
				}
				fmt.Printf("hash:    %s\n", inv.PaymentHash)
				fmt.Printf("\n%s\n", lightning.URI(bolt11))
			case lightning.IsLnurl(payload):
				fmt.Printf("lnurl pay code\n\n%s\n", lightning.URI(lightning.StripURI(payload)))
			default:
				return fmt.Errorf("payload is neither a bolt11 invoice nor an lnurl")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "read the payload from a QR code image file")
	return cmd
}
