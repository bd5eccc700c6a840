package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classverse/classverse"
)

func TestMessageFromModel(t *testing.T) {
	m := &classverse.Message{
		ID:        "abc",
		ChannelID: "chan",
		UserID:    "user",
		Content:   "hello",
	}

	n := messageFromModel(m)

	assert.Equal(t, m.ID, n.ID)
	assert.Equal(t, m.ChannelID, n.ChannelID)
	assert.Equal(t, m.UserID, n.UserID)
	assert.Equal(t, m.Content, n.Content)
}

func TestMessageToModel(t *testing.T) {
	n := &message{
		ID:        "abc",
		ChannelID: "chan",
		Content:   "hello",
	}

	m := n.ToModel()

	assert.Equal(t, n.ID, m.ID)
	assert.Equal(t, n.ChannelID, m.ChannelID)
	assert.Equal(t, n.Content, m.Content)
}
