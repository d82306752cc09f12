package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhamSammich/dexbee-docs/internal/logging"
	"github.com/AhamSammich/dexbee-docs/internal/monitoring"
	"github.com/AhamSammich/dexbee-docs/internal/playground"
	"github.com/AhamSammich/dexbee-docs/internal/shared/id"
	"github.com/AhamSammich/dexbee-docs/internal/theme"
)

// Handlers binds the playground manager and theme store to the HTTP surface.
type Handlers struct {
	sessions *playground.Manager
	store    *theme.Store
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(sessions *playground.Manager, store *theme.Store, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{
		sessions: sessions,
		store:    store,
		metrics:  metrics,
		log:      log,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.sessions.Count(),
	})
}

// CreateSession registers a new uninitialized playground session.
func (h *Handlers) CreateSession(c *gin.Context) {
	session, err := h.sessions.Create()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.SessionsTotal.Inc()
		h.metrics.SessionsActive.Inc()
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":    session.ID(),
		"state": session.State(),
	})
}

// GetSession reports a session's state and last output.
func (h *Handlers) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         session.ID(),
		"state":      session.State(),
		"lastOutput": session.LastOutput(),
	})
}

// InitializeSession provisions and seeds the session's database.
func (h *Handlers) InitializeSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	err := session.Initialize(c.Request.Context())
	if errors.Is(err, playground.ErrInvalidState) {
		h.rejected(c, session)
		return
	}
	body := gin.H{
		"accepted":   true,
		"state":      session.State(),
		"lastOutput": session.LastOutput(),
	}
	if err != nil {
		// Provisioning failure: the status lands in lastOutput and the
		// session is back at uninitialized; retry is another initialize.
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// ResetSession restores the sample dataset.
func (h *Handlers) ResetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	err := session.Reset(c.Request.Context())
	if errors.Is(err, playground.ErrInvalidState) {
		h.rejected(c, session)
		return
	}
	if h.metrics != nil {
		h.metrics.ResetsTotal.Inc()
	}
	body := gin.H{
		"accepted":   true,
		"state":      session.State(),
		"lastOutput": session.LastOutput(),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

type runRequest struct {
	Source string `json:"source" binding:"required"`
}

// RunSession executes user source against the session's database.
func (h *Handlers) RunSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source required"})
		return
	}

	outcome, err := session.Run(c.Request.Context(), req.Source)
	if errors.Is(err, playground.ErrInvalidState) {
		h.rejected(c, session)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRun(outcome.Failed, outcome.Duration.Seconds())
	}
	c.JSON(http.StatusOK, gin.H{
		"accepted": true,
		"state":    session.State(),
		"output":   outcome.Text(),
		"failed":   outcome.Failed,
	})
}

// ReleaseSession drops a session and its ephemeral storage handle.
func (h *Handlers) ReleaseSession(c *gin.Context) {
	sid := id.SessionID(c.Param("id"))
	if !h.sessions.Release(sid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if h.metrics != nil {
		h.metrics.SessionsActive.Dec()
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}

// GetTheme reports current theme state.
func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"theme":  h.store.Theme(),
		"isDark": h.store.IsDark(),
	})
}

// ToggleTheme flips the theme and broadcasts to every mounted consumer.
func (h *Handlers) ToggleTheme(c *gin.Context) {
	h.store.Toggle()
	if h.metrics != nil {
		h.metrics.ThemeToggles.Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"theme":  h.store.Theme(),
		"isDark": h.store.IsDark(),
	})
}

func (h *Handlers) session(c *gin.Context) (*playground.Session, bool) {
	sid := id.SessionID(c.Param("id"))
	session, ok := h.sessions.Get(sid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return session, true
}

// rejected answers a state-violation attempt: not an error, just not done.
func (h *Handlers) rejected(c *gin.Context, session *playground.Session) {
	c.JSON(http.StatusOK, gin.H{
		"accepted": false,
		"state":    session.State(),
	})
}
