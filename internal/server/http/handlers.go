package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/osokin/talkie/internal/model"
)

type authRequest struct {
	Action string `json:"action"`
	Phone  string `json:"phone"`
	Code   string `json:"code"`
}

// handleAuth dispatches the send_code / verify_code actions.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Action {
	case "send_code":
		if req.Phone == "" {
			writeError(w, http.StatusBadRequest, "Phone is required")
			return
		}
		dev, err := s.auth.SendCode(r.Context(), req.Phone)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := map[string]any{"success": true, "message": "Code sent successfully"}
		if dev != "" {
			resp["dev_code"] = dev
		}
		writeJSON(w, http.StatusOK, resp)
	case "verify_code":
		if req.Phone == "" || req.Code == "" {
			writeError(w, http.StatusBadRequest, "Phone and code are required")
			return
		}
		id, err := s.auth.VerifyCode(r.Context(), req.Phone, req.Code)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if id == nil {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "user_exists": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user_exists": true, "user": id})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

type createUserRequest struct {
	Phone    string `json:"phone"`
	Nickname string `json:"nickname"`
	Username string `json:"username"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Phone == "" || req.Nickname == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Phone, nickname and username are required")
		return
	}
	u, err := s.users.CreateProfile(r.Context(), req.Phone, req.Nickname, req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         u.ID,
		"nickname":   u.Nickname,
		"username":   u.Username,
		"created_at": u.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	found, err := s.users.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if found == nil {
		found = []model.Identity{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		writeError(w, http.StatusUnauthorized, "User ID required in X-User-Id header")
		return
	}
	list, err := s.friends.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type friendRequest struct {
	Action   string `json:"action"`
	FriendID int64  `json:"friend_id"`
}

func (s *Server) handleFriendAction(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		writeError(w, http.StatusUnauthorized, "User ID required in X-User-Id header")
		return
	}
	var req friendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.Action {
	case "send_request":
		if err := s.friends.SendRequest(r.Context(), caller, req.FriendID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Friend request sent"})
	case "accept_request":
		if err := s.friends.Accept(r.Context(), caller, req.FriendID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Friend request accepted"})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

type chatRequest struct {
	Action    string  `json:"action"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

func (s *Server) handleChatAction(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		writeError(w, http.StatusUnauthorized, "User ID required in X-User-Id header")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Action != "create_chat" {
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}
	chatID, err := s.chats.Create(r.Context(), caller, req.Type, req.Name, req.MemberIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "chat_id": chatID})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == 0 {
		writeError(w, http.StatusUnauthorized, "User ID required in X-User-Id header")
		return
	}
	list, err := s.chats.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(list))
	for _, c := range list {
		out = append(out, map[string]any{
			"id":           c.ID,
			"type":         c.Type,
			"name":         c.Name,
			"updated_at":   c.UpdatedAt.Format(time.RFC3339),
			"member_count": c.MemberCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
