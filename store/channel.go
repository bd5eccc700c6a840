package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/classverse/classverse"
)

type channel struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Subject      string         `db:"subject"`
	Description  string         `db:"description"`
	AdminID      string         `db:"admin_id"`
	Private      bool           `db:"is_private"`
	Parent       sql.NullString `db:"parent_id"`
	HasSubgroups bool           `db:"has_subgroups"`
	ClassGroup   bool           `db:"is_class_group"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// channelFromModel converts the normal classverse.Channel model into
// a channel which has properties only useful for the database.
func channelFromModel(c *classverse.Channel) *channel {
	return &channel{
		ID:           c.ID,
		Name:         c.Name,
		Subject:      c.Subject,
		Description:  c.Description,
		AdminID:      c.AdminID,
		Private:      c.Private,
		Parent:       sql.NullString{String: c.Parent, Valid: c.Parent != ""},
		HasSubgroups: c.HasSubgroups,
		ClassGroup:   c.ClassGroup,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (c *channel) ToModel() *classverse.Channel {
	mod := &classverse.Channel{
		ID:           c.ID,
		Name:         c.Name,
		Subject:      c.Subject,
		Description:  c.Description,
		AdminID:      c.AdminID,
		Private:      c.Private,
		HasSubgroups: c.HasSubgroups,
		ClassGroup:   c.ClassGroup,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.Parent.Valid {
		mod.Parent = c.Parent.String
	}
	return mod
}

var channelColumns = []string{
	"id", "name", "subject", "description", "admin_id", "is_private",
	"parent_id", "has_subgroups", "is_class_group", "created_at", "updated_at",
}

func scanChannel(row sq.RowScanner) (*classverse.Channel, error) {
	var c channel
	err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.Description, &c.AdminID, &c.Private,
		&c.Parent, &c.HasSubgroups, &c.ClassGroup, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, classverse.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c.ToModel(), nil
}

// CreateChannel inserts the channel and its initial participant set
// in one transaction.
func (d *database) CreateChannel(c *classverse.Channel) (*classverse.Channel, error) {
	tx, err := d.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	dchannel := channelFromModel(c)
	_, err = psql.Insert("channels").
		Columns(channelColumns...).
		Values(dchannel.ID, dchannel.Name, dchannel.Subject, dchannel.Description, dchannel.AdminID,
			dchannel.Private, dchannel.Parent, dchannel.HasSubgroups, dchannel.ClassGroup,
			dchannel.CreatedAt, dchannel.UpdatedAt).
		RunWith(tx).Exec()
	if err != nil {
		return nil, err
	}

	for _, p := range c.Participants {
		_, err = psql.Insert("channel_participants").
			Columns("channel_id", "user_id").Values(dchannel.ID, p).
			RunWith(tx).Exec()
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	mod := dchannel.ToModel()
	mod.Participants = append(mod.Participants, c.Participants...)
	return mod, nil
}

func (d *database) GetChannel(id string) (*classverse.Channel, error) {
	row := psql.Select(channelColumns...).
		From("channels").Where(sq.Eq{"id": id}).RunWith(d).QueryRow()
	mod, err := scanChannel(row)
	if err != nil {
		return nil, err
	}

	mod.Participants, err = d.participants(id)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// participants returns the channel's participant ids in join order.
func (d *database) participants(channelID string) ([]string, error) {
	rows, err := psql.Select("user_id").
		From("channel_participants").Where(sq.Eq{"channel_id": channelID}).
		OrderBy("position").RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetChannelsForUser returns every channel the user participates in
// or administers, excluding channels the user has hidden.
func (d *database) GetChannelsForUser(userID string) ([]*classverse.Channel, error) {
	rows, err := psql.Select(
		"ch.id", "ch.name", "ch.subject", "ch.description", "ch.admin_id", "ch.is_private",
		"ch.parent_id", "ch.has_subgroups", "ch.is_class_group", "ch.created_at", "ch.updated_at").
		From("channels as ch").
		LeftJoin("channel_settings cs ON ( cs.channel_id = ch.id AND cs.user_id = ? )", userID).
		Where(sq.And{
			sq.Or{
				sq.Eq{"ch.admin_id": userID},
				sq.Expr("EXISTS (SELECT 1 FROM channel_participants cp WHERE cp.channel_id = ch.id AND cp.user_id = ?)", userID),
			},
			sq.Expr("COALESCE(cs.hidden, FALSE) = FALSE"),
		}).
		OrderBy("ch.created_at DESC").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*classverse.Channel
	for rows.Next() {
		mod, err := scanChannel(rows)
		if err != nil {
			continue
		}
		channels = append(channels, mod)
	}

	for _, ch := range channels {
		ch.Participants, err = d.participants(ch.ID)
		if err != nil {
			return nil, err
		}
	}

	return channels, nil
}

func (d *database) DeleteChannel(id string) error {
	res, err := psql.Delete("channels").Where(sq.Eq{"id": id}).RunWith(d).Exec()
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classverse.ErrNotFound
	}
	return nil
}

func (d *database) AddUserToChannel(userID, channelID string) error {
	_, err := psql.Insert("channel_participants").
		Columns("channel_id", "user_id").Values(channelID, userID).
		RunWith(d).Exec()
	if isUniqueViolation(err) {
		return classverse.ErrAlreadyMember
	}
	return err
}

func (d *database) RemoveUserFromChannel(userID, channelID string) error {
	_, err := psql.Delete("channel_participants").
		Where(sq.Eq{"channel_id": channelID, "user_id": userID}).
		RunWith(d).Exec()
	return err
}

// GetUsersInChannel returns participants joined with profile info and
// an is-admin flag, in join order.
func (d *database) GetUsersInChannel(channelID string) ([]*classverse.Member, error) {
	rows, err := psql.Select("p.id", "p.name", "p.email", "ch.admin_id").
		From("channel_participants cp").
		Join("profiles p ON ( p.id = cp.user_id )").
		Join("channels ch ON ( ch.id = cp.channel_id )").
		Where(sq.Eq{"cp.channel_id": channelID}).
		OrderBy("cp.position").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*classverse.Member
	for rows.Next() {
		var m classverse.Member
		var adminID string
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &adminID); err != nil {
			continue
		}
		m.Admin = m.UserID == adminID
		members = append(members, &m)
	}

	return members, nil
}

// PrivateChannelForPair finds the private channel whose participant
// set is exactly {a, b}, or ErrNotFound.
func (d *database) PrivateChannelForPair(a, b string) (*classverse.Channel, error) {
	row := psql.Select(channelColumns...).
		From("channels").
		Where(sq.And{
			sq.Eq{"is_private": true},
			sq.Expr("EXISTS (SELECT 1 FROM channel_participants cp WHERE cp.channel_id = id AND cp.user_id = ?)", a),
			sq.Expr("EXISTS (SELECT 1 FROM channel_participants cp WHERE cp.channel_id = id AND cp.user_id = ?)", b),
		}).
		Limit(1).
		RunWith(d).QueryRow()
	mod, err := scanChannel(row)
	if err != nil {
		return nil, err
	}

	mod.Participants, err = d.participants(mod.ID)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (d *database) ClassGroupByName(className string) (*classverse.Channel, error) {
	row := psql.Select(channelColumns...).
		From("channels").
		Where(sq.Eq{"is_class_group": true, "name": className}).
		Limit(1).
		RunWith(d).QueryRow()
	mod, err := scanChannel(row)
	if err != nil {
		return nil, err
	}

	mod.Participants, err = d.participants(mod.ID)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// RemoveAdmin takes the admin out of the channel in one transaction:
// the longest-standing remaining participant is promoted, or the
// channel is deleted when nobody is left. No observer ever sees a
// surviving channel without an admin.
func (d *database) RemoveAdmin(channelID string) (string, bool, error) {
	tx, err := d.Begin()
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback()

	var adminID string
	err = psql.Select("admin_id").From("channels").
		Where(sq.Eq{"id": channelID}).Suffix("FOR UPDATE").
		RunWith(tx).QueryRow().Scan(&adminID)
	if err == sql.ErrNoRows {
		return "", false, classverse.ErrNotFound
	}
	if err != nil {
		return "", false, err
	}

	_, err = psql.Delete("channel_participants").
		Where(sq.Eq{"channel_id": channelID, "user_id": adminID}).
		RunWith(tx).Exec()
	if err != nil {
		return "", false, err
	}

	var promoted string
	err = psql.Select("user_id").From("channel_participants").
		Where(sq.Eq{"channel_id": channelID}).
		OrderBy("position").Limit(1).
		RunWith(tx).QueryRow().Scan(&promoted)
	if err == sql.ErrNoRows {
		if _, err := psql.Delete("channels").Where(sq.Eq{"id": channelID}).RunWith(tx).Exec(); err != nil {
			return "", false, err
		}
		return "", true, tx.Commit()
	}
	if err != nil {
		return "", false, err
	}

	_, err = psql.Update("channels").
		Set("admin_id", promoted).Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": channelID}).
		RunWith(tx).Exec()
	if err != nil {
		return "", false, err
	}

	return promoted, false, errors.Wrap(tx.Commit(), "Error committing admin removal")
}

func (d *database) SetChannelHidden(userID, channelID string, hidden bool) error {
	_, err := psql.Insert("channel_settings").
		Columns("user_id", "channel_id", "hidden").
		Values(userID, channelID, hidden).
		Suffix("ON CONFLICT (user_id, channel_id) DO UPDATE SET hidden = EXCLUDED.hidden").
		RunWith(d).Exec()
	return err
}

func (d *database) SetChannelCleared(userID, channelID string, clearedAt time.Time) error {
	_, err := psql.Insert("channel_settings").
		Columns("user_id", "channel_id", "cleared_at").
		Values(userID, channelID, clearedAt).
		Suffix("ON CONFLICT (user_id, channel_id) DO UPDATE SET cleared_at = EXCLUDED.cleared_at").
		RunWith(d).Exec()
	return err
}

func (d *database) GetChannelSettings(userID, channelID string) (*classverse.ChannelSettings, error) {
	var s classverse.ChannelSettings
	var clearedAt sql.NullTime
	err := psql.Select("user_id", "channel_id", "hidden", "cleared_at").
		From("channel_settings").
		Where(sq.Eq{"user_id": userID, "channel_id": channelID}).
		RunWith(d).QueryRow().
		Scan(&s.UserID, &s.ChannelID, &s.Hidden, &clearedAt)
	if err == sql.ErrNoRows {
		// absent settings row means defaults
		return &classverse.ChannelSettings{UserID: userID, ChannelID: channelID}, nil
	}
	if err != nil {
		return nil, err
	}

	if clearedAt.Valid {
		t := clearedAt.Time
		s.ClearedAt = &t
	}
	return &s, nil
}
