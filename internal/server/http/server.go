// Package httpserver exposes the identity service over HTTP+JSON.
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/osokin/talkie/internal/service"
)

// Server wires application services to HTTP routes.
type Server struct {
	auth    service.AuthService
	users   service.UserService
	friends service.FriendService
	chats   service.ChatService
	log     *zap.Logger
}

// New constructs the server.
func New(auth service.AuthService, users service.UserService, friends service.FriendService, chats service.ChatService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, users: users, friends: friends, chats: chats, log: log}
}

// Router builds the route table with logging and panic recovery applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.HandleFunc("/auth", s.handleAuth).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleSearchUsers).Methods(http.MethodGet)
	r.HandleFunc("/friends", s.handleListFriends).Methods(http.MethodGet)
	r.HandleFunc("/friends", s.handleFriendAction).Methods(http.MethodPost)
	r.HandleFunc("/chats", s.handleListChats).Methods(http.MethodGet)
	r.HandleFunc("/chats", s.handleChatAction).Methods(http.MethodPost)
	return r
}
