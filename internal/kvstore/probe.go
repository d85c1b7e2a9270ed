package kvstore

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const probeKey = "__roamly_probe__"

// Probe checks that s accepts writes by storing and removing a sentinel key.
func Probe(ctx context.Context, s Storage) error {
	if err := s.SetItem(ctx, probeKey, probeKey); err != nil {
		log.Warnf("storage probe write failed: %v", err)
		return fmt.Errorf("probe write: %w", err)
	}
	if err := s.RemoveItem(ctx, probeKey); err != nil {
		log.Warnf("storage probe cleanup failed: %v", err)
		return fmt.Errorf("probe remove: %w", err)
	}
	return nil
}
