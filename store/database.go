package store

import (
	"database/sql"
	_ "embed"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/classverse/classverse"
	"github.com/lib/pq" // postgres drivers
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

//go:embed schema.sql
var schema string

// UserStore ...
type UserStore interface {
	CreateUser(*classverse.User) (*classverse.User, error)
	GetUser(string) (*classverse.User, error)
	GetUsers() ([]*classverse.User, error)
	GetProfiles([]string) ([]*classverse.Profile, error)
	UserForAuth(string) (*classverse.User, error)
	UpdateUserInfo(*classverse.User) error
	UsersInClass(string) ([]*classverse.User, error)
	SearchUsers(excludeID, term string) ([]*classverse.User, error)
}

// ChannelStore ...
type ChannelStore interface {
	CreateChannel(*classverse.Channel) (*classverse.Channel, error)
	GetChannel(string) (*classverse.Channel, error)
	GetChannelsForUser(string) ([]*classverse.Channel, error)
	DeleteChannel(string) error
	AddUserToChannel(userID, channelID string) error
	RemoveUserFromChannel(userID, channelID string) error
	GetUsersInChannel(string) ([]*classverse.Member, error)
	PrivateChannelForPair(a, b string) (*classverse.Channel, error)
	ClassGroupByName(string) (*classverse.Channel, error)
	RemoveAdmin(channelID string) (promoted string, deleted bool, err error)
	SetChannelHidden(userID, channelID string, hidden bool) error
	SetChannelCleared(userID, channelID string, clearedAt time.Time) error
	GetChannelSettings(userID, channelID string) (*classverse.ChannelSettings, error)
}

// MessageStore ...
type MessageStore interface {
	CreateMessage(*classverse.Message) (*classverse.Message, error)
	GetMessage(string) (*classverse.Message, error)
	GetMessagesInChannel(channelID string, since *time.Time) ([]*classverse.Message, error)
	DeleteMessage(string) error
}

// ContactStore ...
type ContactStore interface {
	AddContact(userID, contactID string) error
	RemoveContact(userID, contactID string) error
	GetContacts(userID string) ([]*classverse.Contact, error)
	IsContact(userID, contactID string) (bool, error)
}

// HomeworkStore ...
type HomeworkStore interface {
	CreateHomework(*classverse.Homework) (*classverse.Homework, error)
	GetHomework(userID string) ([]*classverse.Homework, error)
	GetHomeworkByID(string) (*classverse.Homework, error)
	DeleteHomework(string) error
	SetHomeworkDone(homeworkID, userID string, done bool) error
	IsHomeworkDone(homeworkID, userID string) (bool, error)
}

// ScheduleStore ...
type ScheduleStore interface {
	UpsertLesson(*classverse.Lesson) (*classverse.Lesson, error)
	GetLesson(string) (*classverse.Lesson, error)
	GetClassSchedule(className string) ([]*classverse.Lesson, error)
	GetClasses() ([]*classverse.ClassInfo, error)
	DeleteLesson(string) error
}

// Database provides methods to query the database.
type Database interface {
	UserStore
	ChannelStore
	MessageStore
	ContactStore
	HomeworkStore
	ScheduleStore

	Close()
}

type database struct {
	*sql.DB
}

// New connects to the postgres database and returns that connection.
func New(psqlInfo string) (Database, error) {
	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, errors.Wrap(err, "Error opening database")
	}

	// make sure we have a good connection
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "Error pinging database")
	}

	return &database{db}, nil
}

// NewWithMigration connects to the postgres database and applies the
// embedded schema. The schema is idempotent, so this is safe to call
// on every start.
func NewWithMigration(psqlInfo string) (Database, error) {
	db, err := New(psqlInfo)
	if err != nil {
		return nil, err
	}

	if _, err := db.(*database).Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Error applying schema")
	}

	return db, nil
}

// Close closes the database.
func (d *database) Close() {
	d.DB.Close()
}

func (d *database) CreateUser(u *classverse.User) (*classverse.User, error) {
	duser := userFromModel(u)
	_, err := psql.Insert("profiles").
		Columns("id", "name", "email", "password", "class_name", "role", "created_at").
		Values(duser.ID, duser.Name, duser.Email, duser.Password, duser.ClassName, duser.Role, duser.CreatedAt).
		RunWith(d).Exec()

	if err != nil {
		if isUniqueViolation(err) {
			return nil, classverse.ErrAlreadyExists
		}
		return nil, err
	}

	return duser.ToModel(), nil
}

func (d *database) GetUser(id string) (*classverse.User, error) {
	var u user
	row := psql.Select("id", "name", "email", "password", "class_name", "role", "created_at").
		From("profiles").Where(sq.Eq{"id": id}).RunWith(d).QueryRow()
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.ClassName, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, classverse.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return u.ToModel(), nil
}

func (d *database) GetUsers() ([]*classverse.User, error) {
	rows, err := psql.Select("id", "name", "email", "password", "class_name", "role", "created_at").
		From("profiles").OrderBy("name").RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*classverse.User
	for rows.Next() {
		var u user
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.ClassName, &u.Role, &u.CreatedAt); err != nil {
			continue
		}
		users = append(users, u.ToModel())
	}

	return users, nil
}

func (d *database) GetProfiles(ids []string) ([]*classverse.Profile, error) {
	rows, err := psql.Select("id", "name", "email").
		From("profiles").Where(sq.Eq{"id": ids}).RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*classverse.Profile
	for rows.Next() {
		var p classverse.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			continue
		}
		profiles = append(profiles, &p)
	}

	return profiles, nil
}

func (d *database) UserForAuth(email string) (*classverse.User, error) {
	var u userForAuth
	row := psql.Select("id", "password").
		From("profiles").Where(sq.Eq{"email": email}).RunWith(d).QueryRow()
	err := row.Scan(&u.ID, &u.Password)
	if err == sql.ErrNoRows {
		return nil, classverse.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return u.ToModel(), nil
}

func (d *database) UpdateUserInfo(u *classverse.User) error {
	_, err := psql.Update("profiles").
		Set("name", u.Name).Set("class_name", u.ClassName).
		Where(sq.Eq{"id": u.ID}).
		RunWith(d).Exec()
	return err
}

func (d *database) UsersInClass(className string) ([]*classverse.User, error) {
	rows, err := psql.Select("id", "name", "email", "password", "class_name", "role", "created_at").
		From("profiles").Where(sq.Eq{"class_name": className}).OrderBy("name").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*classverse.User
	for rows.Next() {
		var u user
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.ClassName, &u.Role, &u.CreatedAt); err != nil {
			continue
		}
		users = append(users, u.ToModel())
	}

	return users, nil
}

func (d *database) SearchUsers(excludeID, term string) ([]*classverse.User, error) {
	pattern := "%" + term + "%"
	rows, err := psql.Select("id", "name", "email", "password", "class_name", "role", "created_at").
		From("profiles").
		Where(sq.And{
			sq.NotEq{"id": excludeID},
			sq.Or{sq.ILike{"name": pattern}, sq.ILike{"email": pattern}},
		}).
		OrderBy("name").
		RunWith(d).Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*classverse.User
	for rows.Next() {
		var u user
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.ClassName, &u.Role, &u.CreatedAt); err != nil {
			continue
		}
		users = append(users, u.ToModel())
	}

	return users, nil
}

// isUniqueViolation reports whether err is a postgres unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
