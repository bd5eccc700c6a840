// Package mocks provides an in-memory store.Database for tests.
package mocks

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/classverse/classverse"
	"github.com/classverse/classverse/store"
)

type settingsKey struct {
	UserID    string
	ChannelID string
}

type pairKey struct {
	UserID    string
	ContactID string
}

// Store implements store.Database with maps. It is safe for
// concurrent use.
type Store struct {
	mu sync.Mutex

	Users        map[string]*classverse.User
	Channels     map[string]*classverse.Channel
	Messages     map[string]*classverse.Message
	Settings     map[settingsKey]*classverse.ChannelSettings
	ContactPairs map[pairKey]time.Time
	HomeworkRows map[string]*classverse.Homework
	DoneHomework map[pairKey]bool
	Lessons      map[string]*classverse.Lesson
}

var _ store.Database = (*Store)(nil)

// NewStore returns an empty in-memory database.
func NewStore() *Store {
	return &Store{
		Users:        make(map[string]*classverse.User),
		Channels:     make(map[string]*classverse.Channel),
		Messages:     make(map[string]*classverse.Message),
		Settings:     make(map[settingsKey]*classverse.ChannelSettings),
		ContactPairs: make(map[pairKey]time.Time),
		HomeworkRows: make(map[string]*classverse.Homework),
		DoneHomework: make(map[pairKey]bool),
		Lessons:      make(map[string]*classverse.Lesson),
	}
}

func (s *Store) Close() {}

func (s *Store) CreateUser(u *classverse.User) (*classverse.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.Users {
		if existing.Email == u.Email {
			return nil, classverse.ErrAlreadyExists
		}
	}

	cp := *u
	s.Users[u.ID] = &cp
	return &cp, nil
}

func (s *Store) GetUser(id string) (*classverse.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[id]
	if !ok {
		return nil, classverse.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUsers() ([]*classverse.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []*classverse.User
	for _, u := range s.Users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) GetProfiles(ids []string) ([]*classverse.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []*classverse.Profile
	for _, id := range ids {
		if u, ok := s.Users[id]; ok {
			profiles = append(profiles, &classverse.Profile{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return profiles, nil
}

func (s *Store) UserForAuth(email string) (*classverse.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.Users {
		if u.Email == email {
			return &classverse.User{ID: u.ID, Password: u.Password}, nil
		}
	}
	return nil, classverse.ErrNotFound
}

func (s *Store) UpdateUserInfo(u *classverse.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.Users[u.ID]
	if !ok {
		return classverse.ErrNotFound
	}
	existing.Name = u.Name
	existing.ClassName = u.ClassName
	return nil
}

func (s *Store) UsersInClass(className string) ([]*classverse.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []*classverse.User
	for _, u := range s.Users {
		if u.ClassName == className {
			cp := *u
			users = append(users, &cp)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) SearchUsers(excludeID, term string) ([]*classverse.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(term)
	var users []*classverse.User
	for _, u := range s.Users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term) {
			cp := *u
			users = append(users, &cp)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func copyChannel(c *classverse.Channel) *classverse.Channel {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	return &cp
}

func (s *Store) CreateChannel(c *classverse.Channel) (*classverse.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Channels[c.ID] = copyChannel(c)
	return copyChannel(c), nil
}

func (s *Store) GetChannel(id string) (*classverse.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Channels[id]
	if !ok {
		return nil, classverse.ErrNotFound
	}
	return copyChannel(c), nil
}

func (s *Store) GetChannelsForUser(userID string) ([]*classverse.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var channels []*classverse.Channel
	for _, c := range s.Channels {
		if !c.HasParticipant(userID) && c.AdminID != userID {
			continue
		}
		if st, ok := s.Settings[settingsKey{userID, c.ID}]; ok && st.Hidden {
			continue
		}
		channels = append(channels, copyChannel(c))
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].CreatedAt.After(channels[j].CreatedAt) })
	return channels, nil
}

func (s *Store) DeleteChannel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Channels[id]; !ok {
		return classverse.ErrNotFound
	}
	delete(s.Channels, id)
	return nil
}

func (s *Store) AddUserToChannel(userID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Channels[channelID]
	if !ok {
		return classverse.ErrNotFound
	}
	if c.HasParticipant(userID) {
		return classverse.ErrAlreadyMember
	}
	c.Participants = append(c.Participants, userID)
	return nil
}

func (s *Store) RemoveUserFromChannel(userID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Channels[channelID]
	if !ok {
		return classverse.ErrNotFound
	}
	for i, p := range c.Participants {
		if p == userID {
			c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
			return nil
		}
	}
	return classverse.ErrNotFound
}

func (s *Store) GetUsersInChannel(channelID string) ([]*classverse.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Channels[channelID]
	if !ok {
		return nil, classverse.ErrNotFound
	}

	var members []*classverse.Member
	for _, id := range c.Participants {
		u, ok := s.Users[id]
		if !ok {
			continue
		}
		members = append(members, &classverse.Member{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Admin:  c.AdminID == u.ID,
		})
	}
	return members, nil
}

func (s *Store) PrivateChannelForPair(a, b string) (*classverse.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.Channels {
		if c.Private && c.HasParticipant(a) && c.HasParticipant(b) {
			return copyChannel(c), nil
		}
	}
	return nil, classverse.ErrNotFound
}

func (s *Store) ClassGroupByName(className string) (*classverse.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.Channels {
		if c.ClassGroup && c.Name == className {
			return copyChannel(c), nil
		}
	}
	return nil, classverse.ErrNotFound
}

func (s *Store) RemoveAdmin(channelID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.Channels[channelID]
	if !ok {
		return "", false, classverse.ErrNotFound
	}

	remaining := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != c.AdminID {
			remaining = append(remaining, p)
		}
	}

	if len(remaining) == 0 {
		delete(s.Channels, channelID)
		return "", true, nil
	}

	c.Participants = remaining
	c.AdminID = remaining[0]
	return remaining[0], false, nil
}

func (s *Store) SetChannelHidden(userID, channelID string, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := settingsKey{userID, channelID}
	st, ok := s.Settings[k]
	if !ok {
		st = &classverse.ChannelSettings{UserID: userID, ChannelID: channelID}
		s.Settings[k] = st
	}
	st.Hidden = hidden
	return nil
}

func (s *Store) SetChannelCleared(userID, channelID string, clearedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := settingsKey{userID, channelID}
	st, ok := s.Settings[k]
	if !ok {
		st = &classverse.ChannelSettings{UserID: userID, ChannelID: channelID}
		s.Settings[k] = st
	}
	st.ClearedAt = &clearedAt
	return nil
}

func (s *Store) GetChannelSettings(userID, channelID string) (*classverse.ChannelSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.Settings[settingsKey{userID, channelID}]; ok {
		cp := *st
		return &cp, nil
	}
	return &classverse.ChannelSettings{UserID: userID, ChannelID: channelID}, nil
}

func (s *Store) CreateMessage(m *classverse.Message) (*classverse.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	s.Messages[m.ID] = &cp

	out := cp
	if u, ok := s.Users[m.UserID]; ok {
		out.Author = &classverse.Profile{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return &out, nil
}

func (s *Store) GetMessage(id string) (*classverse.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.Messages[id]
	if !ok {
		return nil, classverse.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) GetMessagesInChannel(channelID string, since *time.Time) ([]*classverse.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var messages []*classverse.Message
	for _, m := range s.Messages {
		if m.ChannelID != channelID {
			continue
		}
		if since != nil && !m.CreatedAt.After(*since) {
			continue
		}
		cp := *m
		if u, ok := s.Users[m.UserID]; ok {
			cp.Author = &classverse.Profile{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		messages = append(messages, &cp)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

func (s *Store) DeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Messages[id]; !ok {
		return classverse.ErrNotFound
	}
	delete(s.Messages, id)
	return nil
}

func (s *Store) AddContact(userID, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{userID, contactID}
	if _, ok := s.ContactPairs[k]; !ok {
		s.ContactPairs[k] = time.Now().UTC()
	}
	return nil
}

func (s *Store) RemoveContact(userID, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ContactPairs, pairKey{userID, contactID})
	return nil
}

func (s *Store) GetContacts(userID string) ([]*classverse.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var contacts []*classverse.Contact
	for k, added := range s.ContactPairs {
		if k.UserID != userID {
			continue
		}
		u, ok := s.Users[k.ContactID]
		if !ok {
			continue
		}

		hasChat := false
		for _, c := range s.Channels {
			if c.Private && c.HasParticipant(userID) && c.HasParticipant(k.ContactID) {
				hasChat = true
				break
			}
		}

		contacts = append(contacts, &classverse.Contact{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			ClassName: u.ClassName,
			Role:      u.Role,
			AddedAt:   added,
			HasChat:   hasChat,
		})
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })
	return contacts, nil
}

func (s *Store) IsContact(userID, contactID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ContactPairs[pairKey{userID, contactID}]
	return ok, nil
}

func (s *Store) CreateHomework(hw *classverse.Homework) (*classverse.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *hw
	s.HomeworkRows[hw.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) GetHomework(userID string) ([]*classverse.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*classverse.Homework
	for _, hw := range s.HomeworkRows {
		cp := *hw
		cp.Completed = s.DoneHomework[pairKey{userID, hw.ID}]
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DueDate.Before(items[j].DueDate) })
	return items, nil
}

func (s *Store) GetHomeworkByID(id string) (*classverse.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hw, ok := s.HomeworkRows[id]
	if !ok {
		return nil, classverse.ErrNotFound
	}
	cp := *hw
	return &cp, nil
}

func (s *Store) DeleteHomework(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.HomeworkRows[id]; !ok {
		return classverse.ErrNotFound
	}
	delete(s.HomeworkRows, id)
	return nil
}

func (s *Store) SetHomeworkDone(homeworkID, userID string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{userID, homeworkID}
	if done {
		s.DoneHomework[k] = true
	} else {
		delete(s.DoneHomework, k)
	}
	return nil
}

func (s *Store) IsHomeworkDone(homeworkID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.DoneHomework[pairKey{userID, homeworkID}], nil
}

func (s *Store) UpsertLesson(l *classverse.Lesson) (*classverse.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.Lessons {
		if existing.ClassName == l.ClassName && existing.DayOfWeek == l.DayOfWeek && existing.LessonNumber == l.LessonNumber {
			existing.Subject = l.Subject
			existing.Teacher = l.Teacher
			existing.Classroom = l.Classroom
			existing.StartTime = l.StartTime
			existing.EndTime = l.EndTime
			existing.UpdatedAt = l.UpdatedAt
			cp := *existing
			return &cp, nil
		}
	}

	cp := *l
	s.Lessons[l.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) GetLesson(id string) (*classverse.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.Lessons[id]
	if !ok {
		return nil, classverse.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *Store) GetClassSchedule(className string) ([]*classverse.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lessons []*classverse.Lesson
	for _, l := range s.Lessons {
		if l.ClassName == className {
			cp := *l
			lessons = append(lessons, &cp)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].DayOfWeek != lessons[j].DayOfWeek {
			return lessons[i].DayOfWeek < lessons[j].DayOfWeek
		}
		return lessons[i].LessonNumber < lessons[j].LessonNumber
	})
	return lessons, nil
}

func (s *Store) GetClasses() ([]*classverse.ClassInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students := make(map[string]int)
	for _, u := range s.Users {
		if u.ClassName != "" {
			students[u.ClassName]++
		}
	}
	lessonCounts := make(map[string]int)
	for _, l := range s.Lessons {
		lessonCounts[l.ClassName]++
	}

	seen := make(map[string]bool)
	var classes []*classverse.ClassInfo
	for name := range students {
		seen[name] = true
		classes = append(classes, &classverse.ClassInfo{ClassName: name, StudentCount: students[name], LessonCount: lessonCounts[name]})
	}
	for name := range lessonCounts {
		if !seen[name] {
			classes = append(classes, &classverse.ClassInfo{ClassName: name, LessonCount: lessonCounts[name]})
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ClassName < classes[j].ClassName })
	return classes, nil
}

func (s *Store) DeleteLesson(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Lessons[id]; !ok {
		return classverse.ErrNotFound
	}
	delete(s.Lessons, id)
	return nil
}
