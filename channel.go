package classverse

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Channel contains a conversation: either a named group (possibly a
// class-wide group or a subgroup of another channel) or a private
// two-party chat. Private channels store no independent name; their
// display identity is derived from the other participant's profile.
type Channel struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description,omitempty"`
	AdminID      string    `json:"admin_id"`
	Private      bool      `json:"is_private"`
	Parent       string    `json:"parent_channel_id,omitempty"`
	HasSubgroups bool      `json:"has_subgroups"`
	ClassGroup   bool      `json:"is_class_group"`
	Participants []string  `json:"participant_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasParticipant reports whether id is in the channel's participant
// set. The admin of a group channel is always a participant.
func (c *Channel) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant of a private channel that
// isn't the given user, or "" if there is none.
func (c *Channel) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// DisplayIdentity is the human-facing identity of a channel for one
// viewer: stored name/subject for groups, the other participant's
// profile name for private chats.
type DisplayIdentity struct {
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	Initials string `json:"initials"`
}

// Initials derives an avatar fallback from a display name: first rune
// of up to two words, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}

// ChannelForUser is a channel annotated with the viewing user's
// display identity for it.
type ChannelForUser struct {
	Channel
	Display DisplayIdentity `json:"display"`
}

// Member is a channel participant joined with profile info. Exactly
// one member of a group channel carries Admin=true.
type Member struct {
	UserID string `json:"user_id"`
	Name   string `json:"user_name"`
	Email  string `json:"user_email"`
	Admin  bool   `json:"is_admin"`
}

// GroupCandidate is a contact of the caller considered for invitation
// into a group, flagged with current membership.
type GroupCandidate struct {
	UserID string `json:"user_id"`
	Name   string `json:"user_name"`
	Email  string `json:"user_email"`
	Member bool   `json:"is_member"`
}

// ChannelSettings carries per-(user, channel) visibility state. Hidden
// implements single-sided private-chat deletion; ClearedAt truncates
// the message history from this user's point of view without touching
// the underlying records.
type ChannelSettings struct {
	UserID    string     `json:"user_id"`
	ChannelID string     `json:"channel_id"`
	Hidden    bool       `json:"hidden"`
	ClearedAt *time.Time `json:"cleared_at,omitempty"`
}

// MemberPolicy gates membership mutation on a group channel. The add
// and remove paths consult the same configured policy.
type MemberPolicy func(ch *Channel, callerID string) bool

// PolicyAdminOnly permits only the channel admin to mutate membership.
func PolicyAdminOnly(ch *Channel, callerID string) bool {
	return ch.AdminID == callerID
}

// PolicyAnyParticipant permits any current participant to mutate
// membership.
func PolicyAnyParticipant(ch *Channel, callerID string) bool {
	return ch.HasParticipant(callerID)
}
