package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/auth"
	"github.com/chatgptnotes/vivahgmc.com/internal/connections"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/chatgptnotes/vivahgmc.com/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	threadClients   = make(map[uint]map[*websocket.Conn]bool)
	threadClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type threadEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

// BroadcastNewMessage pushes a freshly inserted message to every client
// subscribed to the connection's thread. Receivers deduplicate by message id,
// so the sender's own subscription receiving the row is harmless.
func BroadcastNewMessage(connectionID uint, message models.Message) {
	threadClientsMu.RLock()
	clients, exists := threadClients[connectionID]
	if !exists || len(clients) == 0 {
		threadClientsMu.RUnlock()
		return
	}

	// Copy the client set so the lock is not held while writing.
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	threadClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(threadEvent{
			Type:    "message:new",
			Message: &message,
		})

		if err != nil {
			log.Printf("Failed to broadcast message to client: %v", err)
			removeThreadClient(connectionID, conn)
			conn.Close()
		}
	}
}

// ThreadWebSocket is the live append stream for one accepted connection's
// thread. Browsers cannot set an Authorization header on a websocket, so the
// JWT arrives as a token query parameter. A client that reconnects after a
// drop must re-fetch the thread over the REST endpoint before resuming; the
// hello event carries that reminder.
func ThreadWebSocket(c *gin.Context) {
	connectionID, err := utils.GetConnectionID(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.UserIDFromToken(c.Query("token"))

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	var myProfile models.Profile

	if err := db.DB.Where("user_id = ?", userID).First(&myProfile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var connection models.ConnectionRequest

	if err := db.DB.First(&connection, connectionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		return
	}

	if err := connections.CanOpenThread(connection, myProfile.ID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	// Register the connection to the thread room
	threadClientsMu.Lock()
	if threadClients[connection.ID] == nil {
		threadClients[connection.ID] = make(map[*websocket.Conn]bool)
	}
	threadClients[connection.ID][conn] = true
	threadClientsMu.Unlock()

	defer func() {
		removeThreadClient(connection.ID, conn)
		conn.Close()

		log.Printf("WebSocket connection closed for thread %d", connection.ID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "Subscribed to thread; re-fetch history after any reconnect",
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		// Send pings periodically
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for thread %d: %v", connection.ID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for thread %d: %v", connection.ID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for thread %d: %v", connection.ID, err)
			break
		}

		// The feed is push-only, but control frames still need a reader.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for thread %d: %v", connection.ID, err)
			}
			break
		}
	}
}

func removeThreadClient(connectionID uint, conn *websocket.Conn) {
	threadClientsMu.Lock()
	defer threadClientsMu.Unlock()

	if clients, exists := threadClients[connectionID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(threadClients, connectionID)
		}
	}
}
