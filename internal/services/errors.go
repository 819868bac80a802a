// internal/services/errors.go
package services

import "errors"

// Caller-visible error kinds of the auction facade. Handlers map these onto
// stable API error codes; every failure aborts the whole operation with no
// partial state change.
var (
	ErrInitParamsInvalid          = errors.New("init params invalid")
	ErrTooManyRecipients          = errors.New("too many recipients")
	ErrRecipientSplitCannotBeZero = errors.New("recipient split cannot be zero")
	ErrInvalidRecipientSplits     = errors.New("recipient splits do not sum to the total basis points")
	ErrUnavailableAuction         = errors.New("unavailable auction")
	ErrOngoingAuction             = errors.New("ongoing auction")
	ErrInsufficientBidAmount      = errors.New("insufficient bid amount")
	ErrCollectAlreadyProcessed    = errors.New("collect already processed")
	ErrFeeAlreadyProcessed        = errors.New("fee already processed")
	ErrNotFollowing               = errors.New("bidder does not follow the creator")
	ErrAuctionNotFound            = errors.New("auction not found")
	ErrProfileNotFound            = errors.New("profile not found")
	ErrTransferFailed             = errors.New("currency transfer failed")
)
