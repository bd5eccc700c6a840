package classverse

import "context"

// Authenticater provides methods to register users and to check that
// a user has provided proper login information.
type Authenticater interface {
	Validate(email, password string) (*User, error)
	Signup(SignupUser) (*User, error)
	GetUser(id string) (*User, error)
	UpdateProfile(userID, name, className string) (*User, error)
}

// Directory resolves which channels a user may see and manages
// channel lifecycle.
type Directory interface {
	ListChannels(userID string) ([]*ChannelForUser, error)
	GetChannel(userID, channelID string) (*ChannelForUser, error)
	CreateGroup(userID, name, subject, description string, allowsSubgroups bool) (*Channel, error)
	CreateSubgroup(userID, parentID, name, subject string) (*Channel, error)
	CreateClassGroup(userID, className string) (*Channel, error)
	CreatePrivateChat(userID, otherID string) (*Channel, error)
	DeleteChannel(userID, channelID string) error
	DeletePrivateChat(userID, channelID string, forBoth bool) error
}

// Messenger handles a channel's ordered message log.
type Messenger interface {
	LoadMessages(userID, channelID string) ([]*Message, error)
	SendMessage(userID, channelID, content string) (*Message, error)
	DeleteMessage(userID, messageID string) (*Message, error)
	ClearHistory(userID, channelID string) error
}

// Membership manages a group channel's participant set.
type Membership interface {
	ListMembers(callerID, channelID string) ([]*Member, error)
	AddMember(callerID, channelID, userID string) error
	RemoveMember(callerID, channelID, userID string) error
	Leave(callerID, channelID string) error
	IsParticipant(userID, channelID string) (bool, error)
	CandidatesForGroup(callerID, channelID, search string) ([]*GroupCandidate, error)
}

// Contacter manages the contact relationships that gate private chats
// and group invites.
type Contacter interface {
	ListContacts(userID string) ([]*Contact, error)
	SearchUsers(userID, term string) ([]*UserSearchResult, error)
	AddContact(userID, targetID string) error
	RemoveContact(userID, targetID string) error
}

// Planner tracks homework assignments and per-user completion.
type Planner interface {
	ListHomework(userID string) ([]*Homework, error)
	CreateHomework(userID string, hw NewHomework) (*Homework, error)
	DeleteHomework(userID, homeworkID string) error
	ToggleHomework(userID, homeworkID string) (bool, error)
	HomeworkStats(userID string) (HomeworkStats, error)
}

// Scheduler serves the weekly class schedule.
type Scheduler interface {
	ClassSchedule(className string) ([]*Lesson, error)
	Classes() ([]*ClassInfo, error)
	PutLesson(callerID string, lesson *Lesson) (*Lesson, error)
	DeleteLesson(callerID, lessonID string) error
}

// Presence tracks which users currently hold a live feed connection.
type Presence interface {
	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
}
