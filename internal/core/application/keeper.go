package application

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// runKeeper is the automation job: it closes the round whenever it's eligible.
func (s *service) runKeeper() {
	ctx := context.Background()

	upkeepNeeded, err := s.CheckUpkeep(ctx)
	if err != nil {
		log.WithError(err).Warn("keeper: failed to check upkeep")
		return
	}
	if !upkeepNeeded {
		return
	}

	requestId, err := s.PerformUpkeep(ctx)
	if err != nil {
		logError(err, "keeper: failed to perform upkeep")
		return
	}
	log.Debugf("keeper: round closed with randomness request %d", requestId)
}
