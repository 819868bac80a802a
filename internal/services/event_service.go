// internal/services/event_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
	"github.com/mvanhalen/scaffold-lens-auction/internal/utils"
)

// EventService persists the facade's observations (auction-created,
// bid-placed, fee-processed, collectable-deployed, collected) and mirrors
// them as structured logs.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{
		db: db,
	}
}

// Record writes one observation inside the caller's transaction so it
// commits or aborts with the state change it describes.
func (s *EventService) Record(tx *gorm.DB, auctionID uuid.UUID, eventType models.AuctionEventType, payload models.JSONB) error {
	event := &models.AuctionEvent{
		AuctionID: auctionID,
		EventType: eventType,
		Payload:   payload,
	}

	if err := tx.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record %s event: %w", eventType, err)
	}

	logrus.WithFields(logrus.Fields{
		"auction_id": auctionID,
		"event_type": eventType,
		"payload":    payload,
	}).Info("Auction event recorded")

	return nil
}

func (s *EventService) ListEvents(auctionID uuid.UUID, params utils.PaginationParams) ([]models.AuctionEvent, int64, error) {
	query := s.db.Model(&models.AuctionEvent{}).Where("auction_id = ?", auctionID)
	if params.Type != "" {
		query = query.Where("event_type = ?", params.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	allowedSortFields := []string{"created_at", "event_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var events []models.AuctionEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, total, nil
}
