package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Capsule is a message that becomes readable once its unlock date has
// passed. OwnerID is the user who may open it; SenderID/SenderEmail are
// only set when somebody else created it for the owner. SenderEmail is a
// snapshot taken at creation time and is not kept in sync afterwards.
type Capsule struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	UnlockDate  time.Time `json:"unlock_date"`
	OwnerID     string    `json:"owner_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	SenderEmail string    `json:"sender_email,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsSaved     bool      `json:"is_saved"`
}

// IsUnlocked reports whether the capsule can be opened at the given
// time. Never stored; callers re-evaluate against their own clock.
func (c Capsule) IsUnlocked(now time.Time) bool {
	return !now.Before(c.UnlockDate)
}

// IsGift reports whether the capsule was created by someone other than
// its owner.
func (c Capsule) IsGift() bool {
	return c.SenderID != ""
}

// ToDoc converts the capsule into its stored document form. Optional
// fields are omitted entirely when unset rather than written as empty
// strings.
func (c Capsule) ToDoc() bson.M {
	doc := bson.M{
		"_id":         c.ID,
		"title":       c.Title,
		"message":     c.Message,
		"unlock_date": c.UnlockDate.UTC().Truncate(time.Millisecond),
		"owner_id":    c.OwnerID,
		"is_saved":    c.IsSaved,
	}
	if c.SenderID != "" {
		doc["sender_id"] = c.SenderID
	}
	if c.SenderEmail != "" {
		doc["sender_email"] = c.SenderEmail
	}
	if c.ImageURL != "" {
		doc["image_url"] = c.ImageURL
	}
	return doc
}

// CapsuleFromDoc decodes a stored document into a Capsule. A document
// missing any required field is reported as absent (ok=false), never as
// a partially populated capsule; list readers skip such records.
func CapsuleFromDoc(doc bson.M) (Capsule, bool) {
	id, ok := doc["_id"].(string)
	if !ok {
		return Capsule{}, false
	}
	title, ok := doc["title"].(string)
	if !ok {
		return Capsule{}, false
	}
	message, ok := doc["message"].(string)
	if !ok {
		return Capsule{}, false
	}
	unlock, ok := docTime(doc["unlock_date"])
	if !ok {
		return Capsule{}, false
	}
	ownerID, ok := doc["owner_id"].(string)
	if !ok {
		return Capsule{}, false
	}
	isSaved, ok := doc["is_saved"].(bool)
	if !ok {
		return Capsule{}, false
	}

	c := Capsule{
		ID:         id,
		Title:      title,
		Message:    message,
		UnlockDate: unlock,
		OwnerID:    ownerID,
		IsSaved:    isSaved,
	}
	c.SenderID, _ = doc["sender_id"].(string)
	c.SenderEmail, _ = doc["sender_email"].(string)
	c.ImageURL, _ = doc["image_url"].(string)
	return c, true
}

// docTime accepts both the driver's wire type and plain time.Time, so
// the codec round-trips without going through BSON marshalling.
func docTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case primitive.DateTime:
		return t.Time().UTC(), true
	default:
		return time.Time{}, false
	}
}

// PartitionOwned splits the capsules owned by a user into the personal
// bucket (self-authored, no sender) and the received bucket (sent by a
// friend). Capsules the user sent to others come from a separate
// sender-keyed query and are not part of the owned set.
func PartitionOwned(owned []Capsule) (personal, received []Capsule) {
	for _, c := range owned {
		if c.IsGift() {
			received = append(received, c)
		} else {
			personal = append(personal, c)
		}
	}
	return personal, received
}

// SortByUnlockDate orders capsules soonest-first.
func SortByUnlockDate(caps []Capsule) {
	sort.SliceStable(caps, func(i, j int) bool {
		return caps[i].UnlockDate.Before(caps[j].UnlockDate)
	})
}
