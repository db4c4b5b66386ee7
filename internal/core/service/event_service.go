package service

import (
	"context"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
)

// EventService implements port.EventService, a thin read-through over the
// event repository for the admin API's alarm history endpoint.
type EventService struct {
	repo port.EventRepository
}

func NewEventService(repo port.EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) RecentEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error) {
	return s.repo.RecentEvents(ctx, limit)
}
