// internal/services/profile_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvanhalen/scaffold-lens-auction/internal/models"
)

// ProfileService is the identity collaborator: profile → current owner
// address resolution and the follow-graph query behind follower-gated
// auctions.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

type CreateProfileRequest struct {
	ProfileID    uuid.UUID `json:"profile_id"`
	Handle       string    `json:"handle" validate:"required,handle"`
	OwnerAddress string    `json:"owner_address" validate:"required,max=255"`
}

func (s *ProfileService) CreateProfile(req *CreateProfileRequest) (*models.Profile, error) {
	profileID := req.ProfileID
	if profileID == uuid.Nil {
		profileID = uuid.New()
	}

	profile := &models.Profile{
		ProfileID:    profileID,
		Handle:       req.Handle,
		OwnerAddress: req.OwnerAddress,
	}

	if err := s.db.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// OwnerOf resolves the CURRENT owner address of a profile. Ownership may
// have transferred since a bid was placed, so refunds, payouts and mints all
// resolve through here at execution time.
func (s *ProfileService) OwnerOf(tx *gorm.DB, profileID uuid.UUID) (string, error) {
	var profile models.Profile
	if err := tx.Where("profile_id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
		}
		return "", fmt.Errorf("failed to resolve profile owner: %w", err)
	}
	return profile.OwnerAddress, nil
}

// IsFollowing answers the follow-graph query. The creator always passes its
// own gate.
func (s *ProfileService) IsFollowing(tx *gorm.DB, followerID, creatorID uuid.UUID) (bool, error) {
	if followerID == creatorID {
		return true, nil
	}

	var count int64
	err := tx.Model(&models.Follow{}).
		Where("follower_profile_id = ? AND creator_profile_id = ?", followerID, creatorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query follow graph: %w", err)
	}

	return count > 0, nil
}

type CreateFollowRequest struct {
	FollowerProfileID uuid.UUID `json:"follower_profile_id" validate:"required"`
	CreatorProfileID  uuid.UUID `json:"creator_profile_id" validate:"required"`
}

func (s *ProfileService) CreateFollow(req *CreateFollowRequest) (*models.Follow, error) {
	follow := &models.Follow{
		FollowerProfileID: req.FollowerProfileID,
		CreatorProfileID:  req.CreatorProfileID,
	}

	if err := s.db.Create(follow).Error; err != nil {
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}

	return follow, nil
}
