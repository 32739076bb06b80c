package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// FriendRequest is a unidirectional proposal stored under the recipient
// and keyed by the requester, so a requester can have at most one
// outstanding request per recipient; re-sending overwrites.
type FriendRequest struct {
	RecipientID string        `bson:"recipient_id" json:"-"`
	RequesterID string        `bson:"requester_id" json:"requester_id"`
	Status      RequestStatus `bson:"status" json:"status"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

// Friendship is one direction of an accepted relationship. Two
// symmetric records exist per friendship, written atomically and
// carrying the same Since timestamp.
type Friendship struct {
	UserID   string    `bson:"user_id" json:"user_id"`
	FriendID string    `bson:"friend_id" json:"friend_id"`
	Since    time.Time `bson:"since" json:"since"`
}
