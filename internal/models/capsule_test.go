package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCapsule() Capsule {
	return Capsule{
		ID:          "cap-1",
		Title:       "graduation",
		Message:     "open when you graduate",
		UnlockDate:  time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC),
		OwnerID:     "u1",
		SenderID:    "u2",
		SenderEmail: "friend@example.com",
		ImageURL:    "https://cdn.example.com/pic.jpg",
		IsSaved:     true,
	}
}

func TestIsUnlocked(t *testing.T) {
	unlock := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Capsule{UnlockDate: unlock}

	assert.False(t, c.IsUnlocked(unlock.Add(-time.Second)))
	assert.True(t, c.IsUnlocked(unlock), "boundary: now == unlockDate counts as unlocked")
	assert.True(t, c.IsUnlocked(unlock.Add(time.Second)))
}

func TestIsUnlockedMonotonic(t *testing.T) {
	unlock := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Capsule{UnlockDate: unlock}

	// Once unlocked, stays unlocked for every later instant.
	now := unlock
	for i := 0; i < 10; i++ {
		assert.True(t, c.IsUnlocked(now))
		now = now.Add(time.Duration(i+1) * time.Hour)
	}
}

func TestPastUnlockDateIsImmediatelyUnlocked(t *testing.T) {
	now := time.Now()
	c := Capsule{UnlockDate: now.Add(-time.Hour)}
	assert.True(t, c.IsUnlocked(now))
}

func TestDocRoundTrip(t *testing.T) {
	original := testCapsule()

	decoded, ok := CapsuleFromDoc(original.ToDoc())
	require.True(t, ok)
	assert.Equal(t, original, decoded)
}

func TestDocRoundTripWithoutOptionalFields(t *testing.T) {
	original := testCapsule()
	original.SenderID = ""
	original.SenderEmail = ""
	original.ImageURL = ""

	doc := original.ToDoc()
	assert.NotContains(t, doc, "sender_id")
	assert.NotContains(t, doc, "sender_email")
	assert.NotContains(t, doc, "image_url")

	decoded, ok := CapsuleFromDoc(doc)
	require.True(t, ok)
	assert.Equal(t, original, decoded)
}

func TestFromDocAcceptsDriverDateTime(t *testing.T) {
	doc := testCapsule().ToDoc()
	unlock := doc["unlock_date"].(time.Time)
	doc["unlock_date"] = primitive.NewDateTimeFromTime(unlock)

	decoded, ok := CapsuleFromDoc(doc)
	require.True(t, ok)
	assert.True(t, decoded.UnlockDate.Equal(unlock))
}

func TestFromDocMissingRequiredField(t *testing.T) {
	required := []string{"_id", "title", "message", "unlock_date", "owner_id", "is_saved"}
	for _, field := range required {
		t.Run(field, func(t *testing.T) {
			doc := testCapsule().ToDoc()
			delete(doc, field)

			decoded, ok := CapsuleFromDoc(doc)
			assert.False(t, ok, "document without %s must decode to absent", field)
			assert.Equal(t, Capsule{}, decoded, "no partially populated capsule")
		})
	}
}

func TestFromDocWrongFieldType(t *testing.T) {
	doc := testCapsule().ToDoc()
	doc["is_saved"] = "yes"

	_, ok := CapsuleFromDoc(doc)
	assert.False(t, ok)
}

func TestFromDocIgnoresUnknownFields(t *testing.T) {
	doc := testCapsule().ToDoc()
	doc["legacy_field"] = bson.M{"nested": 1}

	_, ok := CapsuleFromDoc(doc)
	assert.True(t, ok)
}

func TestPartitionOwned(t *testing.T) {
	a := Capsule{ID: "A", OwnerID: "u1"}
	b := Capsule{ID: "B", OwnerID: "u1", SenderID: "u2"}

	personal, received := PartitionOwned([]Capsule{a, b})
	assert.Equal(t, []Capsule{a}, personal)
	assert.Equal(t, []Capsule{b}, received)
}

func TestSortByUnlockDate(t *testing.T) {
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	caps := []Capsule{
		{ID: "late", UnlockDate: base.Add(48 * time.Hour)},
		{ID: "early", UnlockDate: base},
		{ID: "mid", UnlockDate: base.Add(24 * time.Hour)},
	}

	SortByUnlockDate(caps)

	assert.Equal(t, "early", caps[0].ID)
	assert.Equal(t, "mid", caps[1].ID)
	assert.Equal(t, "late", caps[2].ID)
}
