package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/satspoint/SatsPoint/internal"
	"github.com/satspoint/SatsPoint/internal/lightning"
	"github.com/satspoint/SatsPoint/internal/payclient"
	"github.com/satspoint/SatsPoint/internal/pos"
	"github.com/satspoint/SatsPoint/internal/qr"
)

const posHelp = `Keys:
  0-9      append digits to the amount
  b        backspace
  c        clear the amount
  m <text> set the memo for the next charge
  enter    charge the entered amount
  x        cancel the pending invoice
  n        new sale (reset)
  q        quit`

func posCmd() *cobra.Command {
	var memo string
	cmd := &cobra.Command{
		Use:   "pos",
		Short: "Run the interactive point-of-sale terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := identityStore.Keypair(); err != nil {
				return err
			}

			transitions := make(chan pos.State, 8)
			session := pos.NewSession(
				payclient.POSBackend{Client: client},
				pos.WithPollInterval(time.Duration(internal.Configuration.Pos.PollIntervalSeconds)*time.Second),
				pos.WithPollDeadline(time.Duration(internal.Configuration.Pos.PollDeadlineMinutes)*time.Minute),
				pos.WithNotify(func(state pos.State) { transitions <- state }),
			)

			// one reader owns stdin for the whole command
			lines := make(chan string)
			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					lines <- strings.TrimSpace(scanner.Text())
				}
				close(lines)
			}()

			fmt.Println(posHelp)
			printAmount(session)

			for {
				select {
				case state := <-transitions:
					handleTransition(session, state)
				case line, ok := <-lines:
					if !ok || line == "q" {
						session.Cancel()
						return nil
					}
					handleInput(session, line, &memo)
				}
			}
		},
	}
	cmd.Flags().StringVar(&memo, "memo", "", "memo attached to the first charge")
	return cmd
}

func handleInput(session *pos.Session, line string, memo *string) {
	switch {
	case line == "b":
		session.Backspace()
		printAmount(session)
	case line == "c":
		session.Clear()
		printAmount(session)
	case line == "x":
		session.Cancel()
	case line == "n":
		session.Reset()
	case strings.HasPrefix(line, "m "):
		*memo = strings.TrimSpace(line[2:])
		fmt.Printf("memo: %q\n", *memo)
	case line == "":
		if err := session.Charge(*memo); err != nil {
			fmt.Printf("charge failed: %v\n", err)
			return
		}
		*memo = ""
	default:
		for _, r := range line {
			if r >= '0' && r <= '9' {
				session.AppendDigit(int(r - '0'))
			}
		}
		printAmount(session)
	}
}

func handleTransition(session *pos.Session, state pos.State) {
	switch state {
	case pos.StateAwaitingSettlement:
		invoice := session.Invoice()
		uri := lightning.URI(invoice.Bolt11)
		if code, err := qr.EncodeTerminal(uri); err == nil {
			fmt.Println(code)
		}
		fmt.Printf("invoice %s for %d sats\n%s\n", invoice.PaymentID, session.Amount(), uri)
		fmt.Println("waiting for payment... (x + enter to cancel)")
	case pos.StateSettled:
		fmt.Printf("PAID: %d sats\n", session.Amount())
		session.Reset()
	case pos.StateCancelled:
		fmt.Println("cancelled")
		session.Reset()
	case pos.StateTimedOut:
		fmt.Println("timed out waiting for payment")
		session.Reset()
	case pos.StateInput:
		printAmount(session)
	}
}

func printAmount(session *pos.Session) {
	fmt.Printf("amount: %d sats\n", session.Amount())
}
