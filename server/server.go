package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/classverse/classverse"
)

// type for context.WithValue keys
type ctxKey string

const authCookie = "classverse-token"

const defaultTokenLifetime = 15 * time.Minute

type serverError struct {
	Error   error
	Message string
	Status  int
}

// errHandler provides a less verbose way to handle errors
type errHandler func(http.ResponseWriter, *http.Request) *serverError

func (fn errHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		logrus.Errorf("%v", err.Error)
		http.Error(w, err.Message, err.Status)
	}
}

type server struct {
	hub      *chathub
	router   *mux.Router
	key      []byte
	tokenTTL time.Duration
	validate *validator.Validate

	// services
	Auth     classverse.Authenticater
	Dir      classverse.Directory
	Msg      classverse.Messenger
	Member   classverse.Membership
	Contacts classverse.Contacter
	Plan     classverse.Planner
	Sched    classverse.Scheduler
	Pres     classverse.Presence
}

// NewServer receives all services needed to provide functionality
// then uses those services to spin-up an HTTP server. A hub for
// handling Websocket connections is also started in a goroutine.
// These things are wrapped in the server and returned.
func NewServer(auth classverse.Authenticater, dir classverse.Directory, msg classverse.Messenger, member classverse.Membership, contacts classverse.Contacter, plan classverse.Planner, sched classverse.Scheduler, pres classverse.Presence, secret []byte, tokenTTL time.Duration) *server {
	hub := newChathub(msg, member, pres)

	if tokenTTL <= 0 {
		tokenTTL = defaultTokenLifetime
	}

	s := &server{
		hub:      hub,
		key:      secret,
		tokenTTL: tokenTTL,
		validate: validator.New(),
		Auth:     auth,
		Dir:      dir,
		Msg:      msg,
		Member:   member,
		Contacts: contacts,
		Plan:     plan,
		Sched:    sched,
		Pres:     pres,
	}

	router := mux.NewRouter().StrictSlash(true)
	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.Handle("/channels", s.GetChannels()).Methods("GET")
	apiRouter.Handle("/channel/{id}", s.GetChannel()).Methods("GET")
	apiRouter.Handle("/channel", s.CreateGroup()).Methods("POST")
	apiRouter.Handle("/channel/{parent_id}/subgroup", s.CreateSubgroup()).Methods("POST")
	apiRouter.Handle("/class_group", s.CreateClassGroup()).Methods("POST")
	apiRouter.Handle("/direct", s.CreateDirect()).Methods("POST")
	apiRouter.Handle("/channel/{id}", s.DeleteChannel()).Methods("DELETE")
	apiRouter.Handle("/direct/{id}", s.DeleteDirect()).Methods("DELETE") // r.URL.Query()["for_both"]

	apiRouter.Handle("/messages/{channel}", s.GetMessages()).Methods("GET")
	apiRouter.Handle("/message", s.SendMessage()).Methods("POST")
	apiRouter.Handle("/message/{id}", s.DeleteMessage()).Methods("DELETE")
	apiRouter.Handle("/clear/{channel}", s.ClearHistory()).Methods("POST")

	apiRouter.Handle("/members/{channel}", s.GetMembers()).Methods("GET")
	apiRouter.Handle("/add/{user}/{channel}", s.AddUserToChannel()).Methods("POST")
	apiRouter.Handle("/remove/{user}/{channel}", s.RemoveUserFromChannel()).Methods("DELETE")
	apiRouter.Handle("/leave/{channel}", s.LeaveChannel()).Methods("POST")
	apiRouter.Handle("/candidates/{channel}", s.GroupCandidates()).Methods("GET") // r.URL.Query()["search"]

	apiRouter.Handle("/contacts", s.GetContacts()).Methods("GET")
	apiRouter.Handle("/search_users", s.SearchUsers()).Methods("GET") // r.URL.Query()["q"]
	apiRouter.Handle("/contact", s.AddContact()).Methods("POST")
	apiRouter.Handle("/contact/{id}", s.RemoveContact()).Methods("DELETE")

	apiRouter.Handle("/homework", s.GetHomework()).Methods("GET")
	apiRouter.Handle("/homework", s.CreateHomework()).Methods("POST")
	apiRouter.Handle("/homework/{id}", s.DeleteHomework()).Methods("DELETE")
	apiRouter.Handle("/homework/{id}/toggle", s.ToggleHomework()).Methods("POST")
	apiRouter.Handle("/homework_stats", s.GetHomeworkStats()).Methods("GET")

	apiRouter.Handle("/schedule/{class}", s.GetSchedule()).Methods("GET")
	apiRouter.Handle("/classes", s.GetClasses()).Methods("GET")
	apiRouter.Handle("/lesson", s.PutLesson()).Methods("POST")
	apiRouter.Handle("/lesson/{id}", s.DeleteLesson()).Methods("DELETE")

	apiRouter.Handle("/me", s.CurrentUser()).Methods("GET")
	apiRouter.Handle("/is_admin", s.IsAdmin()).Methods("GET")
	apiRouter.Handle("/update-userinfo", s.UpdateUserInfo()).Methods("POST")
	apiRouter.Handle("/online_users", s.OnlineUsers()).Methods("GET")
	apiRouter.Handle("/refresh_token", s.RefreshToken()).Methods("POST")
	apiRouter.Handle("/logout", s.Logout()).Methods("POST")
	apiRouter.Use(s.metricsMiddleware)
	apiRouter.Use(s.requireAuth) // must be authenticated to use the api endpoints

	router.Handle("/ws", s.requireAuth(s.HandleWS()))
	router.Handle("/login", s.Login()).Methods("POST")
	router.Handle("/signup", s.Signup()).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router = router
	go s.hub.run()
	return s
}

// Serve returns the handler to be used in http.ListenAndServe.
func (s *server) Serve() http.Handler {
	n := negroni.Classic()
	n.UseHandler(s.router)
	return n
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case classverse.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, classverse.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, classverse.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, classverse.ErrAlreadyExists), errors.Is(err, classverse.ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, classverse.ErrNotContact), errors.Is(err, classverse.ErrSelfTarget), errors.Is(err, classverse.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, classverse.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func serviceError(err error, msg string) *serverError {
	return &serverError{err, msg, statusFor(err)}
}

func currentUser(r *http.Request) (classverse.User, *serverError) {
	user, ok := r.Context().Value(ctxKey("user_info")).(classverse.User)
	if !ok {
		return classverse.User{}, &serverError{errors.New("unable to decode user info from context"), "Unable to decode current user", http.StatusUnauthorized}
	}
	return user, nil
}

func (s *server) validatePayload(payload interface{}) *serverError {
	if err := s.validate.Struct(payload); err != nil {
		return &serverError{err, "Invalid payload", http.StatusBadRequest}
	}
	return nil
}

func (s *server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nw := negroni.NewResponseWriter(w)
		next.ServeHTTP(nw, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequests.WithLabelValues(route, strconv.Itoa(nw.Status())).Inc()
	})
}

func (s *server) setAuthCookie(w http.ResponseWriter, user *classverse.User) *serverError {
	expiration := time.Now().Add(s.tokenTTL)
	claims := &JWTToken{
		UserID:        user.ID,
		Email:         user.Email,
		UserName:      user.Name,
		Authenticated: true,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiration.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return &serverError{err, "Unable to sign token", http.StatusInternalServerError}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokenString,
		Expires:  expiration,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// Login authenticates the user and stores a signed cookie with
// their identity for later requests.
func (s *server) Login() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var auther AuthInfo
		if err := json.NewDecoder(r.Body).Decode(&auther); err != nil {
			return &serverError{err, "Ill-formatted login attempt", http.StatusBadRequest}
		}
		if serr := s.validatePayload(auther); serr != nil {
			return serr
		}

		user, err := s.Auth.Validate(auther.Email, auther.Password)
		if err != nil || user == nil {
			return &serverError{err, "Incorrect username/password", http.StatusUnauthorized}
		}

		if serr := s.setAuthCookie(w, user); serr != nil {
			return serr
		}

		json.NewEncoder(w).Encode(user)
		return nil
	}
}

func (s *server) Signup() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var reqUser classverse.SignupUser
		if err := json.NewDecoder(r.Body).Decode(&reqUser); err != nil {
			return &serverError{err, "Unable to decode payload", http.StatusBadRequest}
		}
		if serr := s.validatePayload(reqUser); serr != nil {
			return serr
		}

		user, err := s.Auth.Signup(reqUser)
		if err != nil {
			return serviceError(err, "Unable to create user")
		}

		if serr := s.setAuthCookie(w, user); serr != nil {
			return serr
		}

		json.NewEncoder(w).Encode(user)
		return nil
	}
}

func (s *server) Logout() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		http.SetCookie(w, &http.Cookie{
			Name:     authCookie,
			Value:    "",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Path:     "/",
		})
		w.WriteHeader(http.StatusOK)
		return nil
	}
}

func (s *server) CurrentUser() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		full, err := s.Auth.GetUser(user.ID)
		if err != nil {
			return serviceError(err, "Unable to get current user")
		}

		json.NewEncoder(w).Encode(full)
		return nil
	}
}

// IsAdmin reports whether the current user holds the admin role. The
// role lives in the database, not the token, so it is re-read on every
// check.
func (s *server) IsAdmin() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		full, err := s.Auth.GetUser(user.ID)
		if err != nil {
			return serviceError(err, "Unable to get current user")
		}

		json.NewEncoder(w).Encode(struct {
			IsAdmin bool `json:"is_admin"`
		}{full.IsAdmin()})
		return nil
	}
}

func (s *server) UpdateUserInfo() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		var payload ProfileUpdate
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

		updated, err := s.Auth.UpdateProfile(user.ID, payload.Name, payload.ClassName)
		if err != nil {
			return serviceError(err, "Error updating user info")
		}

		json.NewEncoder(w).Encode(updated)
		return nil
	}
}

func (s *server) OnlineUsers() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		if s.Pres == nil {
			json.NewEncoder(w).Encode([]string{})
			return nil
		}

		ids, err := s.Pres.OnlineUsers(r.Context())
		if err != nil {
			return serviceError(err, "Unable to get online users")
		}
		if ids == nil {
			ids = []string{}
		}

		json.NewEncoder(w).Encode(ids)
		return nil
	}
}

func (s *server) RefreshToken() errHandler {
	return func(w http.ResponseWriter, r *http.Request) *serverError {
		c, err := r.Cookie(authCookie)
		if err != nil {
			return &serverError{err, "Error with cookie", http.StatusUnauthorized}
		}

		claims := &JWTToken{}
		tkn, err := jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
			return s.key, nil
		})

		if err != nil {
			return &serverError{err, "Error parsing JWT", http.StatusUnauthorized}
		} else if !tkn.Valid {
			return &serverError{err, "Error token is not valid", http.StatusUnauthorized}
		}

		if !claims.Authenticated {
			return &serverError{err, "Error user not authenticated", http.StatusUnauthorized}
		}

		if time.Until(time.Unix(claims.ExpiresAt, 0)) > 90*time.Second {
			return &serverError{nil, "Not ready", http.StatusTooEarly}
		}

		expiration := time.Now().Add(s.tokenTTL)
		claims.ExpiresAt = expiration.Unix()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString(s.key)
		if err != nil {
			return &serverError{err, "Error signing token", http.StatusInternalServerError}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authCookie,
			Value:    tokenString,
			Expires:  expiration,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Path:     "/",
		})
		return nil
	}
}

// requireAuth provides an authentication middleware
func (s *server) requireAuth(f http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(authCookie)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			logrus.Error("Error with cookie", err)
			return
		}

		claims := &JWTToken{}
		tkn, err := jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
			return s.key, nil
		})

		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			logrus.Error(err)
			return
		} else if !tkn.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			logrus.Error(err)
			return
		}

		if !claims.Authenticated {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		user := classverse.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.UserName,
		}

		ctx := context.WithValue(r.Context(), ctxKey("user_info"), user)
		f.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HandleWS provides a handler for getting Websocket connections setup
// and registering a new client with the hub.
func (s *server) HandleWS() errHandler {
	var upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) *serverError {
		user, serr := currentUser(r)
		if serr != nil {
			return serr
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.Errorf("unable to upgrade connection %v", err)
			return nil
		}

		cl := &client{
			conn: conn,
			send: make(chan classverse.FeedEvent, 16),
			hub:  s.hub,
			User: user,
		}

		s.hub.register <- cl

		if s.Pres != nil {
			if err := s.Pres.MarkOnline(r.Context(), user.ID); err != nil {
				logrus.Errorf("error marking user online %v", err)
			}
		}

		go cl.writePump()
		go cl.readPump()
		return nil
	}
}
