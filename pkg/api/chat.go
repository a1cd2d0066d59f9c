package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// ChatRooms lists the chat rooms the user can read
func (c *Client) ChatRooms(ctx context.Context) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	if err := c.do(ctx, http.MethodGet, "/api/chat-rooms/", nil, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// RoomForProject finds the chat room of a project
func (c *Client) RoomForProject(ctx context.Context, projectID int) (*models.ChatRoom, error) {
	rooms, err := c.ChatRooms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].Project == projectID {
			return &rooms[i], nil
		}
	}
	return nil, &Error{Status: http.StatusNotFound, Detail: "This project has no chat room."}
}

// Messages returns a room's messages oldest first
func (c *Client) Messages(ctx context.Context, roomID int) ([]models.Message, error) {
	var msgs []models.Message
	q := url.Values{"chat_room_id": {strconv.Itoa(roomID)}}
	if err := c.do(ctx, http.MethodGet, "/api/messages/", q, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a chat message, or a project update when isUpdate is set
func (c *Client) SendMessage(ctx context.Context, roomID int, content string, isUpdate bool) (*models.Message, error) {
	var msg models.Message
	body := map[string]any{"chat_room_id": roomID, "content": content, "is_update": isUpdate}
	if err := c.do(ctx, http.MethodPost, "/api/messages/", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
