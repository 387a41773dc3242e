package history

import (
	"time"

	"github.com/google/uuid"
)

// History caps per tier.
const (
	FreeCap = 10
	ProCap  = 50
)

// Copy is one generated variation. Every variation gets a stable id so
// favorites can reference it after the history entry itself is evicted.
type Copy struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Item is one generation recorded in the user's history.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	ImageURL  string    `json:"image_url"`
	Copies    []Copy    `json:"copies"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite is a copy the user pinned. The text is stored with it, so a
// favorite outlives history eviction.
type Favorite struct {
	UserID    uuid.UUID `json:"-"`
	CopyID    string    `json:"copy_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CapForTier returns how many history items a tier retains.
func CapForTier(isPro bool) int {
	if isPro {
		return ProCap
	}
	return FreeCap
}
