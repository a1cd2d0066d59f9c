package demoapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	s.mu.RLock()
	out := []models.ChatRoom{}
	for _, room := range s.rooms {
		if p := s.projects[room.Project]; p != nil && s.canView(u, p) {
			out = append(out, *room)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

// visibleRoom resolves a room whose project the user may read. Callers hold
// the lock.
func (s *Server) visibleRoom(w http.ResponseWriter, u *account, id int) *models.ChatRoom {
	room := s.rooms[id]
	if room == nil {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return nil
	}
	if s.visibleProject(w, u, room.Project) == nil {
		return nil
	}
	return room
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "chat_room_id")
	if !ok {
		writeFieldErrors(w, fieldErrors{"chat_room_id": {msgRequired}})
		return
	}
	u := currentUser(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.visibleRoom(w, u, id) == nil {
		return
	}
	out := []models.Message{}
	for _, m := range s.messages {
		if m.ChatRoom == id {
			out = append(out, *m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatRoomID int    `json:"chat_room_id"`
		Content    string `json:"content"`
		IsUpdate   bool   `json:"is_update"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}
	errs := fieldErrors{}
	if req.ChatRoomID == 0 {
		errs.add("chat_room_id", msgRequired)
	}
	if strings.TrimSpace(req.Content) == "" {
		errs.add("content", "This field may not be blank.")
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	u := currentUser(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visibleRoom(w, u, req.ChatRoomID) == nil {
		return
	}
	msg := &models.Message{
		ID:        s.nextID(),
		ChatRoom:  req.ChatRoomID,
		Sender:    publicUser(u),
		Content:   req.Content,
		IsUpdate:  req.IsUpdate,
		CreatedAt: s.timestamp(),
	}
	s.messages = append(s.messages, msg)
	writeJSON(w, http.StatusCreated, msg)
}
