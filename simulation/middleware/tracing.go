package middleware

import (
	"context"

	"github.com/absmach/fedsim/simulation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ simulation.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    simulation.Service
}

func Tracing(tracer trace.Tracer, svc simulation.Service) simulation.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Simulate(ctx context.Context, cfg simulation.Config) (rep simulation.Report, err error) {
	ctx, span := tm.tracer.Start(ctx, "simulate", trace.WithAttributes(
		attribute.String("run_id", cfg.RunID),
		attribute.IntSlice("topology", cfg.Topology),
		attribute.Int("clients", cfg.NumClients),
		attribute.Float64("client_fraction", cfg.ClientFraction),
		attribute.Int("samples_per_round", cfg.SamplesPerRound),
		attribute.Float64("learning_rate", cfg.LearningRate),
		attribute.Int("max_rounds", cfg.Rounds),
	))
	defer func() {
		span.SetAttributes(attribute.Int("rounds", rep.Rounds))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return tm.svc.Simulate(ctx, cfg)
}
