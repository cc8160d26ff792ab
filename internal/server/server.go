package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"zoneboard/internal/service"
)

// Server exposes the Strava webhook callback endpoints.
type Server struct {
	verifyToken string
	dispatcher  service.Dispatcher
}

// New creates a Server that validates subscriptions against verifyToken
// and hands incoming events to the dispatcher.
func New(verifyToken string, d service.Dispatcher) *Server {
	return &Server{verifyToken: verifyToken, dispatcher: d}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.GET("/webhook", s.verifySubscription)
	r.POST("/webhook", s.receiveEvent)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// verifySubscription answers the subscription handshake. Strava sends
// its verify token and a challenge; echoing the challenge confirms
// ownership of the callback URL.
func (s *Server) verifySubscription(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != s.verifyToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hub.challenge": challenge})
}

// receiveEvent acknowledges a webhook delivery and queues it for
// processing. Strava expects a 200 within two seconds, so all real work
// happens off this handler. A full queue answers 503 so the delivery is
// retried.
func (s *Server) receiveEvent(c *gin.Context) {
	var ev service.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	if err := s.dispatcher.Enqueue(ev); err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "busy"})
			return
		}
		log.Printf("enqueueing event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}
