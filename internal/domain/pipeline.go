package domain

import (
	"context"

	"github.com/Vovarama1992/go-utils/logger"
)

// step is one stage of a pipeline. A fatal step aborts the whole pipeline
// when it fails; a non-fatal step is logged and skipped so the remaining
// steps still run.
type step struct {
	name  string
	fatal bool
	run   func(ctx context.Context) error
}

func (g *GalleryService) runPipeline(ctx context.Context, pipeline string, steps []step) error {
	for _, st := range steps {
		err := st.run(ctx)
		if err == nil {
			continue
		}

		if st.fatal {
			g.log.Log(logger.LogEntry{
				Level:   "error",
				Message: pipeline + " pipeline aborted",
				Fields:  map[string]any{"step": st.name},
				Error:   err,
			})
			return err
		}

		g.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: pipeline + " step failed, continuing",
			Fields:  map[string]any{"step": st.name},
			Error:   err,
		})
	}
	return nil
}
