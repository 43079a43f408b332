// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"fmt"
	"strings"
	"time"
)

// User represents a registered user account.
//
// Quote Studio has no external identity provider — an account is created the
// moment someone logs in with a display name. The id is our own (xid),
// generated once at login and stable for the lifetime of the account.
//
// WHY Bio string (not *string)?
// The bio is optional, but an empty string is a perfectly fine zero value.
// A nullable pointer would force nil checks everywhere for no benefit.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"` // derived from the name at creation, see AvatarURL
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserUpdate carries a partial update for a user profile.
//
// Pointer fields distinguish "not provided" (nil) from "set to empty" —
// the same trick encoding/json uses for optional PATCH bodies. Only the
// name and bio are mutable; id, avatar, and createdAt never change.
type UserUpdate struct {
	Name *string `json:"name,omitempty"`
	Bio  *string `json:"bio,omitempty"`
}

// UnknownUser is the placeholder identity substituted whenever an authorId
// references a user that no longer exists (quotes and comments keep weak
// author references, and accounts can be deleted out from under them).
// Consumers must never assume an authorId resolves.
var UnknownUser = User{
	Name:   "Unknown",
	Avatar: AvatarURL("unknown"),
}

// AvatarURL derives a deterministic avatar for a display name.
// Same seed in, same picture out — a user always gets the same robot.
// Whitespace is stripped from the seed so "Ada Lovelace" and "AdaLovelace"
// render identically, matching how the seeds were historically generated.
func AvatarURL(name string) string {
	seed := strings.ReplaceAll(name, " ", "")
	return fmt.Sprintf("https://api.dicebear.com/8.x/bottts/svg?seed=%s", seed)
}
