package snapshot

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("recommend.snapshot",
	fx.Provide(NewWorker),
	fx.Invoke(func(lc fx.Lifecycle, worker *Worker) {
		runCtx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go worker.RunForever(runCtx)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				cancel()
				return nil
			},
		})
	}),
)
