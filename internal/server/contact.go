package server

import (
	"errors"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/toolshub/internal/mail"
)

const (
	errAllFieldsRequired = "All fields are required"
	successMessage       = "Message received. We'll get back to you soon."

	// maxContactBodyBytes caps the request body read by POST /api/contact.
	maxContactBodyBytes = 64 << 10
)

// ContactRequest is the body accepted by POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required"`
}

var textPolicy = bluemonday.StrictPolicy()

// plainText strips all markup and leaves readable text.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// handleContact validates a contact submission and relays it. Only requests
// that pass validation count against the client's rate limit.
func (s *Server) handleContact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContactBodyBytes)

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	req.Name = plainText(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = plainText(req.Subject)
	req.Message = plainText(req.Message)
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errAllFieldsRequired})
		return
	}
	if utf8.RuneCountInString(req.Message) > s.opts.MaxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is too long"})
		return
	}

	if !s.limiter.allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
		return
	}

	msg := mail.NewMessage(req.Name, req.Email, req.Subject, req.Message)
	if err := s.relay.Send(c.Request.Context(), msg); err != nil {
		s.logger.Error("failed to relay contact message", "id", msg.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": successMessage,
		"id":      msg.ID,
	})
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	msg := ""
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return errAllFieldsRequired
		case "email":
			msg = "Invalid email address"
		case "max":
			if msg == "" {
				msg = fe.Field() + " is too long"
			}
		}
	}
	if msg == "" {
		msg = "Invalid request body"
	}
	return msg
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client address.
type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

const limiterPruneThreshold = 1024

func newIPLimiter(perMinute, burst int) *ipLimiter {
	return &ipLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.entries) >= limiterPruneThreshold {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
