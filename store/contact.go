package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/classverse/classverse"
)

func (d *database) AddContact(userID, contactID string) error {
	_, err := psql.Insert("contacts").
		Columns("user_id", "contact_id", "added_at").
		Values(userID, contactID, time.Now().UTC()).
		Suffix("ON CONFLICT (user_id, contact_id) DO NOTHING").
		RunWith(d).Exec()
	return err
}

func (d *database) RemoveContact(userID, contactID string) error {
	_, err := psql.Delete("contacts").
		Where(sq.Eq{"user_id": userID, "contact_id": contactID}).
		RunWith(d).Exec()
	return err
}

// GetContacts returns the user's contacts joined with profile info
// and a flag for whether a private channel already exists with them.
func (d *database) GetContacts(userID string) ([]*classverse.Contact, error) {
	rows, err := psql.Select("p.id", "p.name", "p.email", "p.class_name", "p.role", "c.added_at",
		`EXISTS (
			SELECT 1 FROM channels ch
			WHERE ch.is_private
			AND EXISTS (SELECT 1 FROM channel_participants cp WHERE cp.channel_id = ch.id AND cp.user_id = c.user_id)
			AND EXISTS (SELECT 1 FROM channel_participants cp WHERE cp.channel_id = ch.id AND cp.user_id = c.contact_id)
		)`).
		From("contacts c").
		Join("profiles p ON ( p.id = c.contact_id )").
		Where(sq.Eq{"c.user_id": userID}).
		OrderBy("p.name").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*classverse.Contact
	for rows.Next() {
		var c classverse.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ClassName, &c.Role, &c.AddedAt, &c.HasChat); err != nil {
			continue
		}
		contacts = append(contacts, &c)
	}

	return contacts, nil
}

func (d *database) IsContact(userID, contactID string) (bool, error) {
	var exists bool
	err := d.QueryRow("SELECT EXISTS (SELECT 1 FROM contacts WHERE user_id = $1 AND contact_id = $2)",
		userID, contactID).Scan(&exists)
	return exists, err
}
