package concurrent

import (
	"context"
	"os"
	"os/signal"

	"github.com/NilFoundation/tokenctl/common/logging"
)

// OnSignal calls the provided function when one of the expected signals is received and returns.
// If the context is canceled, OnSignal returns without calling the function.
//
// Cancel the main context from f to stop waiting for pending receipts:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	go concurrent.OnSignal(ctx, logger, cancel, syscall.SIGINT, syscall.SIGTERM)
func OnSignal(ctx context.Context, logger logging.Logger, f func(), sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		logger.Warn().Msgf("Caught signal %s; calling handler...", sig)
		f()
	case <-ctx.Done():
	}
}
