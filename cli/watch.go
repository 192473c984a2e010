package cli

import (
	"context"
	"errors"

	"github.com/absmach/fedsim/pkg/mqtt"
	"github.com/spf13/cobra"
)

var errNoBroker = errors.New("MQTT broker address is not configured")

func NewWatchCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [run-id]",
		Short: "Follow published round metrics",
		Long: `Subscribe to the round metrics published by running simulations and
print them until interrupted. Without a run ID every run is followed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.PubSub == nil {
				return errNoBroker
			}

			runID := "+"
			if len(args) == 1 {
				runID = args[0]
			}
			topic := mqtt.RoundsTopic(runID)

			ctx := cmd.Context()
			if err := deps.PubSub.Subscribe(ctx, topic, func(_ string, msg map[string]any) error {
				logJSONCmd(*cmd, msg)

				return nil
			}); err != nil {
				return err
			}

			<-ctx.Done()

			return deps.PubSub.Unsubscribe(context.WithoutCancel(ctx), topic)
		},
	}
}
