package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type messenger struct {
	DB store.Database
}

// NewMessenger wraps a database connection with a *messenger that
// implements the classverse.Messenger interface.
func NewMessenger(db store.Database) (classverse.Messenger, error) {
	return &messenger{
		DB: db,
	}, nil
}

// LoadMessages returns the channel's history in creation order,
// truncated to the caller's cleared-at marker if one is set.
func (m *messenger) LoadMessages(userID, channelID string) ([]*classverse.Message, error) {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return nil, err
	}
	if !ch.HasParticipant(userID) && ch.AdminID != userID {
		return nil, classverse.ErrPermissionDenied
	}

	settings, err := m.DB.GetChannelSettings(userID, channelID)
	if err != nil {
		return nil, err
	}

	return m.DB.GetMessagesInChannel(channelID, settings.ClearedAt)
}

// SendMessage appends to the channel's log. Content is trimmed and
// must be non-empty; the author must be a participant.
func (m *messenger) SendMessage(userID, channelID, content string) (*classverse.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, classverse.ErrEmptyMessage
	}
	if channelID == "" {
		return nil, classverse.NewValidationError(classverse.ErrNotFound,
			classverse.FieldError{Field: "channel_id", Error: "no channel selected"})
	}

	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return nil, err
	}
	if !ch.HasParticipant(userID) && ch.AdminID != userID {
		return nil, classverse.ErrPermissionDenied
	}

	author, err := m.DB.GetUser(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return m.DB.CreateMessage(&classverse.Message{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Author:    &classverse.Profile{ID: author.ID, Name: author.Name},
	})
}

// DeleteMessage removes a message. Only the author may delete; the
// removed message is returned so callers can fan out the deletion.
func (m *messenger) DeleteMessage(userID, messageID string) (*classverse.Message, error) {
	msg, err := m.DB.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, classverse.ErrPermissionDenied
	}

	if err := m.DB.DeleteMessage(messageID); err != nil {
		return nil, err
	}
	return msg, nil
}

// ClearHistory persists the caller's cleared-at marker. Underlying
// records are untouched, so other participants keep their history.
func (m *messenger) ClearHistory(userID, channelID string) error {
	ch, err := m.DB.GetChannel(channelID)
	if err != nil {
		return err
	}
	if !ch.HasParticipant(userID) && ch.AdminID != userID {
		return classverse.ErrPermissionDenied
	}

	return m.DB.SetChannelCleared(userID, channelID, time.Now().UTC())
}
