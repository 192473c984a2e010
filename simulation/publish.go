package simulation

import (
	"context"

	"github.com/absmach/fedsim/pkg/mqtt"
)

type publishRecorder struct {
	pubsub mqtt.PubSub
}

// NewPublishRecorder publishes each round on the run's rounds topic. The
// connection is owned by the caller.
func NewPublishRecorder(pubsub mqtt.PubSub) Recorder {
	return &publishRecorder{pubsub: pubsub}
}

func (pr *publishRecorder) Record(ctx context.Context, m RoundMetrics) error {
	return pr.pubsub.Publish(ctx, mqtt.RoundsTopic(m.RunID), m)
}

func (pr *publishRecorder) Close() error {
	return nil
}
