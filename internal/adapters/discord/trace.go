package discord

import "time"

func (r *Router) step(label string) func() {
	start := time.Now()
	return func() { r.log.Debug().Str("step", label).Dur("took", time.Since(start)).Msg("trace") }
}
