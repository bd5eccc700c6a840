package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/classverse/classverse"
)

func (s *server) GetChannels() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		channels, err := s.Dir.ListChannels(user.ID)
		if err != nil {
			return serviceError(err, "Error getting channels for the user")
		}
		if channels == nil {
			channels = []*classverse.ChannelForUser{}
		}

		json.NewEncoder(w).Encode(channels)
		return nil
	}
}

func (s *server) GetChannel() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		channel, err := s.Dir.GetChannel(user.ID, mux.Vars(r)["id"])
		if err != nil {
			return serviceError(err, "Unable to get channel")
		}

		json.NewEncoder(w).Encode(channel)
		return nil
	}
}

func (s *server) CreateGroup() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload CreateGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		channel, err := s.Dir.CreateGroup(user.ID, payload.Name, payload.Subject, payload.Description, payload.AllowsSubgroups)
		if err != nil {
			return serviceError(err, "Unable to create group")
		}

		json.NewEncoder(w).Encode(channel)
		return nil
	}
}

func (s *server) CreateSubgroup() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload CreateSubgroupRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		channel, err := s.Dir.CreateSubgroup(user.ID, mux.Vars(r)["parent_id"], payload.Name, payload.Subject)
		if err != nil {
			return serviceError(err, "Unable to create subgroup")
		}

		json.NewEncoder(w).Encode(channel)
		return nil
	}
}

func (s *server) CreateClassGroup() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload ClassGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		channel, err := s.Dir.CreateClassGroup(user.ID, payload.ClassName)
		if err != nil {
			return serviceError(err, "Unable to create class group")
		}

		json.NewEncoder(w).Encode(channel)
		return nil
	}
}

func (s *server) CreateDirect() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload PrivateChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		channel, err := s.Dir.CreatePrivateChat(user.ID, payload.UserID)
		if err != nil {
			return serviceError(err, "Unable to create private chat")
		}

		json.NewEncoder(w).Encode(channel)
		return nil
	}
}

func (s *server) DeleteChannel() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Dir.DeleteChannel(user.ID, mux.Vars(r)["id"]); err != nil {
			return serviceError(err, "Unable to delete channel")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) DeleteDirect() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		forBoth := r.URL.Query().Get("for_both") == "true"
		if err := s.Dir.DeletePrivateChat(user.ID, mux.Vars(r)["id"], forBoth); err != nil {
			return serviceError(err, "Unable to delete private chat")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) GetMessages() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		messages, err := s.Msg.LoadMessages(user.ID, mux.Vars(r)["channel"])
		if err != nil {
			return serviceError(err, "Error getting messages in the channel")
		}
		if messages == nil {
			messages = []*classverse.Message{}
		}

		json.NewEncoder(w).Encode(messages)
		return nil
	}
}

func (s *server) SendMessage() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		msg, err := s.Msg.SendMessage(user.ID, payload.ChannelID, payload.Content)
		if err != nil {
			return serviceError(err, "Unable to send message")
		}
		messagesSent.Inc()
		s.hub.BroadcastMessage(msg)

		json.NewEncoder(w).Encode(msg)
		return nil
	}
}

func (s *server) DeleteMessage() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		msg, err := s.Msg.DeleteMessage(user.ID, mux.Vars(r)["id"])
		if err != nil {
			return serviceError(err, "Unable to delete message")
		}
		s.hub.BroadcastDeletion(msg)

		json.NewEncoder(w).Encode(msg)
		return nil
	}
}

func (s *server) ClearHistory() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Msg.ClearHistory(user.ID, mux.Vars(r)["channel"]); err != nil {
			return serviceError(err, "Unable to clear history")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) GetMembers() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		members, err := s.Member.ListMembers(user.ID, mux.Vars(r)["channel"])
		if err != nil {
			return serviceError(err, "Error getting members of the channel")
		}
		if members == nil {
			members = []*classverse.Member{}
		}

		json.NewEncoder(w).Encode(members)
		return nil
	}
}

func (s *server) AddUserToChannel() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		userID := mux.Vars(r)["user"]
		channelID := mux.Vars(r)["channel"]
		if err := s.Member.AddMember(user.ID, channelID, userID); err != nil {
			return serviceError(err, "Unable to add user to channel")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Successfully added user %v to channel %v", userID, channelID)
		return nil
	}
}

func (s *server) RemoveUserFromChannel() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		userID := mux.Vars(r)["user"]
		channelID := mux.Vars(r)["channel"]
		if err := s.Member.RemoveMember(user.ID, channelID, userID); err != nil {
			return serviceError(err, "Unable to remove user from channel")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Successfully removed user %v from channel %v", userID, channelID)
		return nil
	}
}

func (s *server) LeaveChannel() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Member.Leave(user.ID, mux.Vars(r)["channel"]); err != nil {
			return serviceError(err, "Unable to leave channel")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) GroupCandidates() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		candidates, err := s.Member.CandidatesForGroup(user.ID, mux.Vars(r)["channel"], r.URL.Query().Get("search"))
		if err != nil {
			return serviceError(err, "Unable to get candidates for the group")
		}
		if candidates == nil {
			candidates = []*classverse.GroupCandidate{}
		}

		json.NewEncoder(w).Encode(candidates)
		return nil
	}
}

func (s *server) GetContacts() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		contacts, err := s.Contacts.ListContacts(user.ID)
		if err != nil {
			return serviceError(err, "Error getting contacts")
		}
		if contacts == nil {
			contacts = []*classverse.Contact{}
		}

		json.NewEncoder(w).Encode(contacts)
		return nil
	}
}

func (s *server) SearchUsers() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		results, err := s.Contacts.SearchUsers(user.ID, r.URL.Query().Get("q"))
		if err != nil {
			return serviceError(err, "Error searching users")
		}
		if results == nil {
			results = []*classverse.UserSearchResult{}
		}

		json.NewEncoder(w).Encode(results)
		return nil
	}
}

func (s *server) AddContact() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Contacts.AddContact(user.ID, payload.UserID); err != nil {
			return serviceError(err, "Unable to add contact")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) RemoveContact() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Contacts.RemoveContact(user.ID, mux.Vars(r)["id"]); err != nil {
			return serviceError(err, "Unable to remove contact")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) GetHomework() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		homework, err := s.Plan.ListHomework(user.ID)
		if err != nil {
			return serviceError(err, "Error getting homework")
		}
		if homework == nil {
			homework = []*classverse.Homework{}
		}

		json.NewEncoder(w).Encode(homework)
		return nil
	}
}

func (s *server) CreateHomework() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload classverse.NewHomework
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		homework, err := s.Plan.CreateHomework(user.ID, payload)
		if err != nil {
			return serviceError(err, "Unable to create homework")
		}

		json.NewEncoder(w).Encode(homework)
		return nil
	}
}

func (s *server) DeleteHomework() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Plan.DeleteHomework(user.ID, mux.Vars(r)["id"]); err != nil {
			return serviceError(err, "Unable to delete homework")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}

func (s *server) ToggleHomework() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		done, err := s.Plan.ToggleHomework(user.ID, mux.Vars(r)["id"])
		if err != nil {
			return serviceError(err, "Unable to toggle homework")
		}

		json.NewEncoder(w).Encode(struct {
			Completed bool `json:"completed"`
		}{done})
		return nil
	}
}

func (s *server) GetHomeworkStats() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		stats, err := s.Plan.HomeworkStats(user.ID)
		if err != nil {
			return serviceError(err, "Unable to get homework stats")
		}

		json.NewEncoder(w).Encode(stats)
		return nil
	}
}

func (s *server) GetSchedule() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		lessons, err := s.Sched.ClassSchedule(mux.Vars(r)["class"])
		if err != nil {
			return serviceError(err, "Error getting schedule")
		}
		if lessons == nil {
			lessons = []*classverse.Lesson{}
		}

		json.NewEncoder(w).Encode(lessons)
		return nil
	}
}

func (s *server) GetClasses() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		classes, err := s.Sched.Classes()
		if err != nil {
			return serviceError(err, "Error getting classes")
		}
		if classes == nil {
			classes = []*classverse.ClassInfo{}
		}

		json.NewEncoder(w).Encode(classes)
		return nil
	}
}

func (s *server) PutLesson() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload classverse.Lesson
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(payload); serr != nil {
			return serr
		}

		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		lesson, err := s.Sched.PutLesson(user.ID, &payload)
		if err != nil {
			return serviceError(err, "Unable to save lesson")
		}

		json.NewEncoder(w).Encode(lesson)
		return nil
	}
}

func (s *server) DeleteLesson() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		if err := s.Sched.DeleteLesson(user.ID, mux.Vars(r)["id"]); err != nil {
			return serviceError(err, "Unable to delete lesson")
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Success")
		return nil
	}
}
