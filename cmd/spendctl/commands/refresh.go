package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spendboard/internal/amqp"
)

var errNoBroker = errors.New("AMQP_URL is not set")

func (c *CLI) newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask running dashboards to reload their data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reason, _ := cmd.Flags().GetString("reason")
			if c.cfg.AMQPURL == "" {
				return errNoBroker
			}
			client, err := amqp.NewClient(c.cfg.AMQPURL, c.cfg.AMQPExchange, c.cfg.AMQPRefreshQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.RequestRefresh(cmd.Context(), amqp.NewRefreshRequest("spendctl", reason)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refresh requested on exchange %s\n", c.cfg.AMQPExchange)
			return nil
		},
	}
	cmd.Flags().String("reason", "manual", "Reason recorded with the request")
	return cmd
}
