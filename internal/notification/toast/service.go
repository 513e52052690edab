// Package toast streams fire-and-forget user notifications over Server-Sent
// Events. The board and catalog modules publish into it; nothing ever reads a
// result back.
package toast

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_board_backend/platform/logger"
)

// Level is the toast severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// DefaultDurationMs is how long clients show a toast unless told otherwise.
const DefaultDurationMs = 4000

// Toast is one notification payload.
type Toast struct {
	Level      Level  `json:"level"`
	Message    string `json:"message"`
	DurationMs int    `json:"durationMs"`
}

// client is one connected SSE stream.
type client struct {
	orgID  uuid.UUID
	toasts chan Toast
}

// Service manages SSE connections and broadcasts toasts per organization.
type Service struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // orgID -> streams
}

// New creates the toast service.
func New(log *logger.Logger) *Service {
	return &Service{
		log:     log,
		clients: make(map[uuid.UUID][]*client),
	}
}

// Success broadcasts a success toast to the organization.
func (s *Service) Success(organizationID uuid.UUID, message string) {
	s.publish(organizationID, Toast{Level: LevelSuccess, Message: message, DurationMs: DefaultDurationMs})
}

// Error broadcasts an error toast to the organization.
func (s *Service) Error(organizationID uuid.UUID, message string) {
	s.publish(organizationID, Toast{Level: LevelError, Message: message, DurationMs: DefaultDurationMs})
}

// Warning broadcasts a warning toast to the organization.
func (s *Service) Warning(organizationID uuid.UUID, message string) {
	s.publish(organizationID, Toast{Level: LevelWarning, Message: message, DurationMs: DefaultDurationMs})
}

// Info broadcasts an info toast to the organization.
func (s *Service) Info(organizationID uuid.UUID, message string) {
	s.publish(organizationID, Toast{Level: LevelInfo, Message: message, DurationMs: DefaultDurationMs})
}

// publish sends under the read lock. Streams are closed only under the write
// lock, so a send can never hit a closed channel; the non-blocking send keeps
// the lock hold time bounded.
func (s *Service) publish(organizationID uuid.UUID, toast Toast) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cl := range s.clients[organizationID] {
		select {
		case cl.toasts <- toast:
		default:
			s.log.Warn("toast buffer full, dropping", "orgId", organizationID)
		}
	}
}

func (s *Service) addClient(cl *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[cl.orgID] = append(s.clients[cl.orgID], cl)
}

func (s *Service) removeClient(cl *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	streams := s.clients[cl.orgID]
	for i, c := range streams {
		if c == cl {
			s.clients[cl.orgID] = append(streams[:i], streams[i+1:]...)
			// Only close a stream we still owned; Close may have beaten us.
			close(cl.toasts)
			break
		}
	}
	if len(s.clients[cl.orgID]) == 0 {
		delete(s.clients, cl.orgID)
	}
}

// Handler returns a gin handler streaming the caller's organization toasts.
func (s *Service) Handler(getOrgID func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := getOrgID(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "organization required"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{orgID: orgID, toasts: make(chan Toast, 32)}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"orgId": orgID})
		c.Writer.Flush()
		s.log.Debug("toast stream connected", "orgId", orgID)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("toast stream disconnected", "orgId", orgID)
				return
			case toast, open := <-cl.toasts:
				if !open {
					return
				}
				data, _ := json.Marshal(toast)
				c.SSEvent(string(toast.Level), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every connected stream.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, streams := range s.clients {
		for _, cl := range streams {
			close(cl.toasts)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
