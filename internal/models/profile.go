// internal/models/profile.go
package models

import (
	"github.com/google/uuid"
)

// Profile maps a publication/bidder identity to its current owner address.
// Ownership can transfer, so owner_address is resolved fresh wherever funds
// or tokens are delivered.
type Profile struct {
	BaseModel
	ProfileID    uuid.UUID `json:"profile_id" gorm:"type:uuid;uniqueIndex;not null"`
	Handle       string    `json:"handle" gorm:"size:100;uniqueIndex"`
	OwnerAddress string    `json:"owner_address" gorm:"size:255;not null;index"`
}

// Follow is one edge of the follow graph consulted by follower-gated
// auctions.
type Follow struct {
	BaseModel
	FollowerProfileID uuid.UUID `json:"follower_profile_id" gorm:"type:uuid;not null;uniqueIndex:idx_follows_edge"`
	CreatorProfileID  uuid.UUID `json:"creator_profile_id" gorm:"type:uuid;not null;uniqueIndex:idx_follows_edge"`
}
