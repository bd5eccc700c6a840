package services

import (
	"strings"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type membership struct {
	DB store.Database

	// policy gates both the add and remove paths; it is configured
	// once here so call sites cannot disagree about who may mutate
	// membership.
	policy classverse.MemberPolicy
}

// NewMembership wraps a database connection with a *membership that
// implements the classverse.Membership interface. A nil policy
// defaults to admin-only mutation.
func NewMembership(db store.Database, policy classverse.MemberPolicy) (classverse.Membership, error) {
	if policy == nil {
		policy = classverse.PolicyAdminOnly
	}
	return &membership{
		DB:     db,
		policy: policy,
	}, nil
}

// ListMembers returns the participant roster. Membership gates
// visibility the same way it does for the channel itself, so an
// outsider cannot tell the channel exists.
func (m *membership) ListMembers(callerID, channelID string) ([]*classverse.Member, error) {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return nil, err
	}
	if !ch.HasParticipant(callerID) && ch.AdminID != callerID {
		return nil, classverse.ErrNotFound
	}
	return m.DB.GetUsersInChannel(channelID)
}

// AddMember puts a user into a group channel. The configured policy
// decides who may do this; duplicates are rejected.
func (m *membership) AddMember(callerID, channelID, userID string) error {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return err
	}
	if ch.Private {
		return classverse.ErrPermissionDenied
	}
	if !m.policy(ch, callerID) {
		return classverse.ErrPermissionDenied
	}

	if _, err := m.DB.GetUser(userID); err != nil {
		return err
	}
	if ch.HasParticipant(userID) {
		return classverse.ErrAlreadyMember
	}

	return m.DB.AddUserToChannel(userID, channelID)
}

// RemoveMember takes a non-admin participant out of a group channel.
// Participants may always remove themselves; removing anyone else is
// gated by the configured policy. The admin can only be removed via
// Leave, which handles reassignment.
func (m *membership) RemoveMember(callerID, channelID, userID string) error {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return err
	}
	if ch.Private {
		return classverse.ErrPermissionDenied
	}
	if userID == ch.AdminID {
		return classverse.ErrPermissionDenied
	}
	if !ch.HasParticipant(userID) {
		return classverse.ErrNotFound
	}

	if callerID != userID && !m.policy(ch, callerID) {
		return classverse.ErrPermissionDenied
	}

	return m.DB.RemoveUserFromChannel(userID, channelID)
}

// Leave removes the caller from a group channel. When the admin
// leaves, the longest-standing remaining participant is promoted; if
// nobody remains, the channel is deleted.
func (m *membership) Leave(callerID, channelID string) error {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return err
	}
	if ch.Private {
		return classverse.ErrPermissionDenied
	}
	if !ch.HasParticipant(callerID) {
		return classverse.ErrNotFound
	}

	if callerID == ch.AdminID {
		_, _, err := m.DB.RemoveAdmin(channelID)
		return err
	}
	return m.DB.RemoveUserFromChannel(callerID, channelID)
}

func (m *membership) IsParticipant(userID, channelID string) (bool, error) {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return false, err
	}
	return ch.HasParticipant(userID) || ch.AdminID == userID, nil
}

// CandidatesForGroup lists the caller's contacts as invite candidates
// for a group, filtered by an optional search term and flagged with
// current membership.
func (m *membership) CandidatesForGroup(callerID, channelID, search string) ([]*classverse.GroupCandidate, error) {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return nil, err
	}
	if !ch.HasParticipant(callerID) && ch.AdminID != callerID {
		return nil, classverse.ErrPermissionDenied
	}

	contacts, err := m.DB.GetContacts(callerID)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(search)
	var candidates []*classverse.GroupCandidate
	for _, c := range contacts {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		candidates = append(candidates, &classverse.GroupCandidate{
			UserID: c.ID,
			Name:   c.Name,
			Email:  c.Email,
			Member: ch.HasParticipant(c.ID),
		})
	}

	return candidates, nil
}
