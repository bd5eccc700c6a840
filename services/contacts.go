package services

import (
	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type contacter struct {
	DB store.Database
}

// NewContacter wraps a database connection with a *contacter that
// implements the classverse.Contacter interface.
func NewContacter(db store.Database) (classverse.Contacter, error) {
	return &contacter{
		DB: db,
	}, nil
}

func (c *contacter) ListContacts(userID string) ([]*classverse.Contact, error) {
	return c.DB.GetContacts(userID)
}

// SearchUsers finds users by name or email, excluding the caller and
// flagging results that are already contacts.
func (c *contacter) SearchUsers(userID, term string) ([]*classverse.UserSearchResult, error) {
	users, err := c.DB.SearchUsers(userID, term)
	if err != nil {
		return nil, err
	}

	contacts, err := c.DB.GetContacts(userID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(contacts))
	for _, ct := range contacts {
		known[ct.ID] = true
	}

	results := make([]*classverse.UserSearchResult, 0, len(users))
	for _, u := range users {
		results = append(results, &classverse.UserSearchResult{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			ClassName: u.ClassName,
			Role:      u.Role,
			IsContact: known[u.ID],
		})
	}
	return results, nil
}

// AddContact records the relationship; adding an existing contact is
// a no-op.
func (c *contacter) AddContact(userID, targetID string) error {
	if userID == targetID {
		return classverse.ErrSelfTarget
	}

	if _, err := c.DB.GetUser(targetID); err != nil {
		return err
	}

	return c.DB.AddContact(userID, targetID)
}

func (c *contacter) RemoveContact(userID, targetID string) error {
	return c.DB.RemoveContact(userID, targetID)
}
