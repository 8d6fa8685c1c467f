package worker

import (
	"fmt"

	"go.uber.org/zap"
)

// Subscriber attaches its handlers to the event dispatcher.
type Subscriber interface {
	RegisterHandlers()
}

// StartSubscribers registers every subscriber. Handlers run inline with Publish, so
// there is nothing to stop on shutdown.
func StartSubscribers(logger *zap.Logger, subscribers ...Subscriber) int {
	started := 0
	for _, sub := range subscribers {
		if sub == nil {
			continue
		}
		sub.RegisterHandlers()
		started++
		logger.Debug("subscriber registered", zap.String("subscriber", fmt.Sprintf("%T", sub)))
	}
	return started
}
