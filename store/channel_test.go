package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classverse/classverse"
)

func TestChannelFromModel(t *testing.T) {
	m := &classverse.Channel{
		ID:     "abc",
		Name:   "Math club",
		Parent: "parent-id",
	}

	n := channelFromModel(m)

	assert.Equal(t, m.ID, n.ID)
	assert.Equal(t, m.Name, n.Name)
	assert.True(t, n.Parent.Valid)
	assert.Equal(t, m.Parent, n.Parent.String)
}

func TestChannelFromModelNoParent(t *testing.T) {
	n := channelFromModel(&classverse.Channel{ID: "abc"})
	assert.False(t, n.Parent.Valid)
}

func TestChannelToModel(t *testing.T) {
	n := &channel{
		ID:      "abc",
		Name:    "Math club",
		Private: true,
	}

	m := n.ToModel()

	assert.Equal(t, n.ID, m.ID)
	assert.Equal(t, n.Name, m.Name)
	assert.True(t, m.Private)
	assert.Empty(t, m.Parent)
}
