// Package search is the application layer over the PIN prober: one search per
// owner, ban-gated like session creation.
package search

import (
	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/prober"
)

type Service struct {
	prober *prober.Manager
	bans   *banlist.List
}

func NewService(p *prober.Manager, bans *banlist.List) *Service {
	return &Service{prober: p, bans: bans}
}

func (s *Service) Start(startPin int, owner string) (string, error) {
	if s.bans != nil && s.bans.IsBanned(owner) {
		return "", ErrOwnerBanned
	}
	return s.prober.Start(startPin, owner)
}

// Stop cancels the owner's search. The stop itself is asynchronous; the job
// reports stopped once the in-flight batch drains.
func (s *Service) Stop(owner string) error {
	snap, ok := s.prober.StatusByOwner(owner)
	if !ok {
		return ErrNoSearch
	}
	return s.prober.Stop(snap.ID)
}

func (s *Service) Status(owner string) (prober.Snapshot, error) {
	snap, ok := s.prober.StatusByOwner(owner)
	if !ok {
		return prober.Snapshot{}, ErrNoSearch
	}
	return snap, nil
}

func (s *Service) StatusByID(jobID string) (prober.Snapshot, error) {
	return s.prober.Status(jobID)
}
