// Package shutdown turns termination signals into context cancellation and
// runs cleanup hooks once.
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, cancel := h.Context(context.Background())
//	defer cancel()
//	h.OnShutdown(saveState)
//	runUntil(ctx)
//	_ = h.Shutdown()
package shutdown
