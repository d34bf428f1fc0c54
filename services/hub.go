package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans notification events out to connected users. A user can hold
// several connections (multiple tabs); every one of them receives the
// push.
type Hub struct {
	clients       map[*Client]bool
	register      chan *Client
	unregister    chan *Client
	mutex         sync.RWMutex
	notifications *NotificationService
}

type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
	userID uint
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetNotificationService breaks the construction cycle between the hub
// and the notification service.
func (h *Hub) SetNotificationService(notifications *NotificationService) {
	h.notifications = notifications
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client registered: %s for user %d - Total clients: %d", client.id, client.userID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client unregistered: %s for user %d - Total clients: %d", client.id, client.userID, len(h.clients))
			}
			h.mutex.Unlock()
		}
	}
}

// SendToUser pushes a typed message to every open connection of a user.
// Users with no open connection simply miss the push; the notification
// row is still there on the next list read.
func (h *Hub) SendToUser(userID uint, messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) IsUserConnected(userID uint) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.userID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) RegisterClient(conn *websocket.Conn, userID uint) *Client {
	client := &Client{
		hub:    h,
		id:     generateClientID(),
		socket: conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		response := Message{
			Type:    "pong",
			Payload: "pong",
		}
		data, _ := json.Marshal(response)
		c.send <- data

	case "sync":
		// Client asks for its current unread count after (re)connecting.
		if c.hub.notifications == nil {
			return
		}
		unread, err := c.hub.notifications.UnreadCount(c.userID)
		if err != nil {
			log.Printf("Failed to compute unread count for user %d: %v", c.userID, err)
			return
		}
		response := Message{
			Type:    "unread_count",
			Payload: map[string]interface{}{"unread": unread},
		}
		data, _ := json.Marshal(response)
		c.send <- data

	default:
		log.Printf("Unknown message type: %s from user %d", msg.Type, c.userID)
	}
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "client_" + hex.EncodeToString(b)
}
