package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/talkie/internal/content"
	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/mode"
	"github.com/abhisek/talkie/internal/tutor"
)

// Handler serves the tutoring API on top of a Tutor.
type Handler struct {
	tutor *tutor.Tutor
	log   *logger.Logger
}

// NewHandler returns a Handler.
func NewHandler(t *tutor.Tutor, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{tutor: t, log: log.With("component", "api")}
}

type createUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required"`
}

type attemptRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Mode       string `json:"mode" binding:"required"`
	Submission string `json:"submission"`
	Reference  string `json:"reference"`
	Difficulty string `json:"difficulty"`
	Choice     int    `json:"choice"`
}

type coachRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Text   string `json:"text"`
}

type roleplayRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Scenario string `json:"scenario"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "invalid_request", err)
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.tutor.CreateUser(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "name": u.Name, "created_at": u.CreatedAt})
}

// DELETE /api/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.tutor.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/users/:id/progress
func (h *Handler) Progress(c *gin.Context) {
	v, err := h.tutor.ProgressSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, v)
}

// GET /api/users/:id/suggestions
func (h *Handler) Suggestions(c *gin.Context) {
	s, err := h.tutor.Suggestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, gin.H{"suggestions": s})
}

// GET /api/badges
func (h *Handler) Badges(c *gin.Context) {
	respondOK(c, gin.H{"badges": h.tutor.Rules().Definitions()})
}

// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	id, err := h.tutor.NewSession(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

// GET /api/sessions/:sid/content/:category?difficulty=
func (h *Handler) Content(c *gin.Context) {
	cat := content.ParseCategory(c.Param("category"))
	d := mode.ParseDifficulty(c.Query("difficulty"))
	item, err := h.tutor.PickContent(c.Request.Context(), c.Param("sid"), cat, d)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, item)
}

// POST /api/sessions/:sid/attempts
func (h *Handler) Attempt(c *gin.Context) {
	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, ok := mode.Parse(req.Mode)
	if !ok {
		h.fail(c, fmt.Errorf("%w: %q", tutor.ErrUnknownMode, req.Mode))
		return
	}
	out, err := h.tutor.Submit(c.Request.Context(), req.UserID, c.Param("sid"), tutor.Attempt{
		Mode:       m,
		Difficulty: mode.ParseDifficulty(req.Difficulty),
		Submission: req.Submission,
		Reference:  req.Reference,
		Choice:     req.Choice,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, out)
}

// POST /api/sessions/:sid/coach
func (h *Handler) Coach(c *gin.Context) {
	var req coachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	turn, err := h.tutor.Talk(c.Request.Context(), req.UserID, c.Param("sid"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, turn)
}

// POST /api/sessions/:sid/roleplay
func (h *Handler) Roleplay(c *gin.Context) {
	var req roleplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	turn, err := h.tutor.Roleplay(c.Request.Context(), req.UserID, c.Param("sid"), req.Scenario, req.Question, req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, turn)
}

// GET /api/sessions/:sid/meaning?word=&user_id=
func (h *Handler) Meaning(c *gin.Context) {
	word, userID := c.Query("word"), c.Query("user_id")
	if word == "" || userID == "" {
		badRequest(c, errors.New("word and user_id are required"))
		return
	}
	l, err := h.tutor.Meaning(c.Request.Context(), userID, c.Param("sid"), word)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, l)
}
