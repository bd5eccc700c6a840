package services

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

// legacyNamePattern recovers participant names from the free-text
// description older private channels were created with. It is a
// migration shim: channels created by this code always resolve the
// display name through the other participant's profile.
var legacyNamePattern = regexp.MustCompile(`between (.+) and (.+)$`)

// placeholderName is shown when a private channel's counterpart
// cannot be resolved at all.
const placeholderName = "Interlocutor"

type directory struct {
	DB store.Database
}

// NewDirectory wraps a database connection with a *directory that
// implements the classverse.Directory interface.
func NewDirectory(db store.Database) (classverse.Directory, error) {
	return &directory{
		DB: db,
	}, nil
}

// ListChannels returns every channel visible to the user, annotated
// with a display identity. Failure of the profile lookup degrades to
// the legacy fallback chain rather than failing the listing.
func (d *directory) ListChannels(userID string) ([]*classverse.ChannelForUser, error) {
	channels, err := d.DB.GetChannelsForUser(userID)
	if err != nil {
		return nil, err
	}

	viewer, err := d.DB.GetUser(userID)
	if err != nil {
		return nil, err
	}

	profiles := d.counterpartProfiles(userID, channels)

	annotated := make([]*classverse.ChannelForUser, 0, len(channels))
	for _, ch := range channels {
		annotated = append(annotated, &classverse.ChannelForUser{
			Channel: *ch,
			Display: displayIdentity(ch, viewer, profiles),
		})
	}
	return annotated, nil
}

func (d *directory) GetChannel(userID, channelID string) (*classverse.ChannelForUser, error) {
	ch, err := d.DB.GetChannel(channelID)
	if err != nil {
		return nil, err
	}

	// membership gates visibility
	if !ch.HasParticipant(userID) && ch.AdminID != userID {
		return nil, classverse.ErrNotFound
	}

	viewer, err := d.DB.GetUser(userID)
	if err != nil {
		return nil, err
	}

	profiles := d.counterpartProfiles(userID, []*classverse.Channel{ch})
	return &classverse.ChannelForUser{
		Channel: *ch,
		Display: displayIdentity(ch, viewer, profiles),
	}, nil
}

// counterpartProfiles resolves, in one query, the profiles of the
// non-self participants of the private channels in the list.
func (d *directory) counterpartProfiles(userID string, channels []*classverse.Channel) map[string]*classverse.Profile {
	var ids []string
	for _, ch := range channels {
		if !ch.Private {
			continue
		}
		if other := ch.OtherParticipant(userID); other != "" {
			ids = append(ids, other)
		}
	}

	byID := make(map[string]*classverse.Profile, len(ids))
	if len(ids) == 0 {
		return byID
	}

	profiles, err := d.DB.GetProfiles(ids)
	if err != nil {
		return byID
	}
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID
}

// displayIdentity computes the human-facing identity of a channel for
// one viewer. Groups use their stored name and subject. Private
// channels resolve the other participant's profile, falling back to
// the legacy description parse and finally a placeholder.
func displayIdentity(ch *classverse.Channel, viewer *classverse.User, profiles map[string]*classverse.Profile) classverse.DisplayIdentity {
	if !ch.Private {
		return classverse.DisplayIdentity{
			Name:     ch.Name,
			Subtitle: ch.Subject,
			Initials: classverse.Initials(ch.Name),
		}
	}

	name := placeholderName
	if p, ok := profiles[ch.OtherParticipant(viewer.ID)]; ok {
		name = p.Name
	} else if match := legacyNamePattern.FindStringSubmatch(ch.Description); match != nil {
		if match[1] == viewer.Name {
			name = match[2]
		} else {
			name = match[1]
		}
	}

	return classverse.DisplayIdentity{
		Name:     name,
		Subtitle: "Private chat",
		Initials: classverse.Initials(name),
	}
}

func (d *directory) CreateGroup(userID, name, subject, description string, allowsSubgroups bool) (*classverse.Channel, error) {
	if name == "" {
		return nil, classverse.NewValidationError(classverse.ErrEmptyMessage,
			classverse.FieldError{Field: "name", Error: "group name is required"})
	}

	now := time.Now().UTC()
	return d.DB.CreateChannel(&classverse.Channel{
		ID:           uuid.New().String(),
		Name:         name,
		Subject:      subject,
		Description:  description,
		AdminID:      userID,
		HasSubgroups: allowsSubgroups,
		Participants: []string{userID},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// CreateSubgroup spins a new group off an existing one. The parent
// must allow subgroups and the caller must belong to it; membership is
// seeded from the parent's participant set.
func (d *directory) CreateSubgroup(userID, parentID, name, subject string) (*classverse.Channel, error) {
	parent, err := d.DB.GetChannel(parentID)
	if err != nil {
		return nil, err
	}
	if parent.Private || !parent.HasSubgroups {
		return nil, classverse.ErrPermissionDenied
	}
	if !parent.HasParticipant(userID) {
		return nil, classverse.ErrPermissionDenied
	}

	now := time.Now().UTC()
	return d.DB.CreateChannel(&classverse.Channel{
		ID:           uuid.New().String(),
		Name:         name,
		Subject:      subject,
		AdminID:      userID,
		Parent:       parentID,
		Participants: parent.Participants,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// CreateClassGroup bootstraps the channel for a whole class, seeded
// with every profile in that class. Admin-only and idempotent: an
// existing group for the class is returned as-is.
func (d *directory) CreateClassGroup(userID, className string) (*classverse.Channel, error) {
	caller, err := d.DB.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, classverse.ErrPermissionDenied
	}

	if existing, err := d.DB.ClassGroupByName(className); err == nil {
		return existing, nil
	} else if err != classverse.ErrNotFound {
		return nil, err
	}

	students, err := d.DB.UsersInClass(className)
	if err != nil {
		return nil, err
	}

	participants := []string{userID}
	for _, s := range students {
		if s.ID == userID {
			continue
		}
		participants = append(participants, s.ID)
	}

	now := time.Now().UTC()
	return d.DB.CreateChannel(&classverse.Channel{
		ID:           uuid.New().String(),
		Name:         className,
		Subject:      "Class group",
		AdminID:      userID,
		ClassGroup:   true,
		Participants: participants,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// CreatePrivateChat opens (or returns) the one private channel for
// the caller and the given contact.
func (d *directory) CreatePrivateChat(userID, otherID string) (*classverse.Channel, error) {
	if userID == otherID {
		return nil, classverse.ErrSelfTarget
	}

	if _, err := d.DB.GetUser(otherID); err != nil {
		return nil, err
	}

	isContact, err := d.DB.IsContact(userID, otherID)
	if err != nil {
		return nil, err
	}
	if !isContact {
		return nil, classverse.ErrNotContact
	}

	if existing, err := d.DB.PrivateChannelForPair(userID, otherID); err == nil {
		// the caller may have hidden this chat earlier; opening it
		// again puts it back in their listing
		if err := d.DB.SetChannelHidden(userID, existing.ID, false); err != nil {
			return nil, err
		}
		return existing, nil
	} else if err != classverse.ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	return d.DB.CreateChannel(&classverse.Channel{
		ID:           uuid.New().String(),
		AdminID:      userID,
		Private:      true,
		Participants: []string{userID, otherID},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// DeleteChannel removes a group channel. Only the admin may do this;
// private channels go through DeletePrivateChat.
func (d *directory) DeleteChannel(userID, channelID string) error {
	ch, err := d.DB.GetChannel(channelID)
	if err != nil {
		return err
	}
	if ch.Private || ch.AdminID != userID {
		return classverse.ErrPermissionDenied
	}

	return d.DB.DeleteChannel(channelID)
}

// DeletePrivateChat removes a private channel for both participants,
// or hides it for the caller only, leaving the other side untouched.
func (d *directory) DeletePrivateChat(userID, channelID string, forBoth bool) error {
	ch, err := d.DB.GetChannel(channelID)
	if err != nil {
		return err
	}
	if !ch.Private || !ch.HasParticipant(userID) {
		return classverse.ErrPermissionDenied
	}

	if forBoth {
		return d.DB.DeleteChannel(channelID)
	}
	return d.DB.SetChannelHidden(userID, channelID, true)
}
