package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/classverse/classverse"
)

type message struct {
	ID        string    `db:"id"`
	ChannelID string    `db:"channel_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// messageFromModel converts the normal classverse.Message model into
// a message which has properties only useful for the database.
func messageFromModel(m *classverse.Message) *message {
	return &message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m *message) ToModel() *classverse.Message {
	return &classverse.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (d *database) CreateMessage(m *classverse.Message) (*classverse.Message, error) {
	dmessage := messageFromModel(m)
	_, err := psql.Insert("messages").
		Columns("id", "channel_id", "user_id", "content", "created_at", "updated_at").
		Values(dmessage.ID, dmessage.ChannelID, dmessage.UserID, dmessage.Content,
			dmessage.CreatedAt, dmessage.UpdatedAt).
		RunWith(d).Exec()
	if err != nil {
		return nil, err
	}

	mod := dmessage.ToModel()
	mod.Author = m.Author
	return mod, nil
}

func (d *database) GetMessage(id string) (*classverse.Message, error) {
	var m message
	var author classverse.Profile
	row := psql.Select("ms.id", "ms.channel_id", "ms.user_id", "ms.content", "ms.created_at", "ms.updated_at",
		"p.id", "p.name").
		From("messages as ms").
		Join("profiles p ON ( p.id = ms.user_id )").
		Where(sq.Eq{"ms.id": id}).
		RunWith(d).QueryRow()
	err := row.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.Content, &m.CreatedAt, &m.UpdatedAt,
		&author.ID, &author.Name)
	if err == sql.ErrNoRows {
		return nil, classverse.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	mod := m.ToModel()
	mod.Author = &author
	return mod, nil
}

// GetMessagesInChannel returns the channel's messages in creation
// order with the author profile denormalized. A non-nil since marker
// truncates the list to messages created after it.
func (d *database) GetMessagesInChannel(channelID string, since *time.Time) ([]*classverse.Message, error) {
	q := psql.Select("ms.id", "ms.channel_id", "ms.user_id", "ms.content", "ms.created_at", "ms.updated_at",
		"p.id", "p.name").
		From("messages as ms").
		Join("profiles p ON ( p.id = ms.user_id )").
		Where(sq.Eq{"ms.channel_id": channelID})
	if since != nil {
		q = q.Where(sq.Gt{"ms.created_at": *since})
	}

	rows, err := q.OrderBy("ms.created_at ASC").RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*classverse.Message
	for rows.Next() {
		var m message
		var author classverse.Profile
		err := rows.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.Content, &m.CreatedAt, &m.UpdatedAt,
			&author.ID, &author.Name)
		if err != nil {
			continue
		}

		mod := m.ToModel()
		mod.Author = &author
		messages = append(messages, mod)
	}

	return messages, nil
}

func (d *database) DeleteMessage(id string) error {
	res, err := psql.Delete("messages").Where(sq.Eq{"id": id}).RunWith(d).Exec()
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classverse.ErrNotFound
	}
	return nil
}
