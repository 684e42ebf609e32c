package cinevault

import "fmt"

// canReview checks if a content item can be moderated from its current status.
// Returns true if review is allowed, false with an error otherwise.
func canReview(status ContentStatus) (bool, error) {
	switch status {
	case ContentStatusSubmitted:
		return true, nil
	case ContentStatusApproved, ContentStatusRegistered, ContentStatusRentable:
		return false, fmt.Errorf("%w: content has already been reviewed (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRejected:
		return false, fmt.Errorf("%w: content was rejected and is terminal (status: %s)", ErrInvalidStatus, status)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, status)
	}
}

// canConfirmRegistration checks if external registration can be confirmed.
// Returns true if confirmation is allowed, false with an error otherwise.
func canConfirmRegistration(status ContentStatus) (bool, error) {
	switch status {
	case ContentStatusApproved:
		return true, nil
	case ContentStatusSubmitted:
		return false, fmt.Errorf("%w: content has not been approved yet (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRegistered, ContentStatusRentable:
		return false, fmt.Errorf("%w: registration already confirmed (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRejected:
		return false, fmt.Errorf("%w: content was rejected and is terminal (status: %s)", ErrInvalidStatus, status)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, status)
	}
}

// canConfirmRights checks if license-terms configuration can be confirmed.
// Returns true if confirmation is allowed, false with an error otherwise.
func canConfirmRights(status ContentStatus) (bool, error) {
	switch status {
	case ContentStatusRegistered:
		return true, nil
	case ContentStatusSubmitted, ContentStatusApproved:
		return false, fmt.Errorf("%w: content is not externally registered yet (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRentable:
		return false, fmt.Errorf("%w: rights already configured (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRejected:
		return false, fmt.Errorf("%w: content was rejected and is terminal (status: %s)", ErrInvalidStatus, status)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, status)
	}
}

// canLike checks if content can be liked in its current status. Likes are
// open from approval onward; submitted and rejected items cannot be liked.
func canLike(status ContentStatus) (bool, error) {
	switch status {
	case ContentStatusApproved, ContentStatusRegistered, ContentStatusRentable:
		return true, nil
	case ContentStatusSubmitted:
		return false, fmt.Errorf("%w: content is awaiting moderation (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRejected:
		return false, fmt.Errorf("%w: content was rejected (status: %s)", ErrInvalidStatus, status)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, status)
	}
}

// canRent checks if content can be rented in its current status.
func canRent(status ContentStatus) (bool, error) {
	switch status {
	case ContentStatusRentable:
		return true, nil
	case ContentStatusSubmitted, ContentStatusApproved, ContentStatusRegistered:
		return false, fmt.Errorf("%w: content is not rentable yet (status: %s)", ErrInvalidStatus, status)
	case ContentStatusRejected:
		return false, fmt.Errorf("%w: content was rejected (status: %s)", ErrInvalidStatus, status)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidStatus, status)
	}
}
