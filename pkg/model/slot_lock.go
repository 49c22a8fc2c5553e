package model

import "time"

// SlotLock is an advisory lock keyed by the (provider, day, slot label)
// triple. It narrows the race window around the booking transaction: two
// requests for the same slot collide on the lock's _id before either opens
// a transaction.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
