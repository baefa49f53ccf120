package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-compass/internal/assessment"
	"student-compass/internal/service"
)

// AssessmentHandler expone el banco de preguntas, el scoring y las sesiones.
type AssessmentHandler struct {
	logger *zap.Logger
	svc    *service.AssessmentService
}

func NewAssessmentHandler(logger *zap.Logger, svc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{logger: logger, svc: svc}
}

// ListQuestions maneja GET /assessment/questions (?type=OCEAN|RIASEC).
func (h *AssessmentHandler) ListQuestions(c *gin.Context) {
	questions := h.svc.Questions()
	if kind := strings.ToUpper(strings.TrimSpace(c.Query("type"))); kind != "" {
		filtered := make([]assessment.Question, 0, len(questions))
		for _, q := range questions {
			if string(q.Kind) == kind {
				filtered = append(filtered, q)
			}
		}
		questions = filtered
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}

// Score maneja POST /assessment/score; no persiste.
func (h *AssessmentHandler) Score(c *gin.Context) {
	var req struct {
		Answers assessment.AnswerSet `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "score")
		return
	}
	strict, _ := strconv.ParseBool(c.DefaultQuery("strict", "false"))

	result, err := h.svc.Score(req.Answers, strict)
	if err != nil {
		respondError(c, h.logger, err, "score answers")
		return
	}
	c.JSON(http.StatusOK, result)
}

// StartSession maneja POST /assessment/sessions.
func (h *AssessmentHandler) StartSession(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "start session")
		return
	}
	if !authorizedFor(c, req.UserID) {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}

	view, err := h.svc.StartSession(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, h.logger, err, "start session")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession maneja GET /assessment/sessions/:id.
func (h *AssessmentHandler) GetSession(c *gin.Context) {
	view, ok := h.ownedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// AnswerSession maneja PUT /assessment/sessions/:id/answers.
func (h *AssessmentHandler) AnswerSession(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id"`
		Value      *int   `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "answer")
		return
	}
	if _, ok := h.ownedSession(c); !ok {
		return
	}

	view, err := h.svc.AnswerSession(c.Request.Context(), c.Param("id"), req.QuestionID, *req.Value)
	if err != nil {
		respondError(c, h.logger, err, "answer question")
		return
	}
	c.JSON(http.StatusOK, view)
}

// BackSession maneja POST /assessment/sessions/:id/back.
func (h *AssessmentHandler) BackSession(c *gin.Context) {
	if _, ok := h.ownedSession(c); !ok {
		return
	}
	view, err := h.svc.BackSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "go back")
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitSession maneja POST /assessment/sessions/:id/submit.
func (h *AssessmentHandler) SubmitSession(c *gin.Context) {
	if _, ok := h.ownedSession(c); !ok {
		return
	}
	result, err := h.svc.SubmitSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "submit session")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProfile maneja GET /user/:id/assessment.
func (h *AssessmentHandler) GetProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "get profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SubmitAnswers maneja POST /user/:id/assessment con el answer set completo.
func (h *AssessmentHandler) SubmitAnswers(c *gin.Context) {
	var req struct {
		Answers assessment.AnswerSet `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "submit answers")
		return
	}
	result, err := h.svc.SubmitAnswers(c.Request.Context(), c.Param("id"), req.Answers)
	if err != nil {
		respondError(c, h.logger, err, "submit answers")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SaveProfile maneja PUT /user/:id/assessment con un resultado ya calculado.
func (h *AssessmentHandler) SaveProfile(c *gin.Context) {
	var req struct {
		OceanScores map[string]int `json:"ocean_scores" binding:"required"`
		RiasecCode  string         `json:"riasec_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "save profile")
		return
	}
	profile, err := h.svc.SaveProfile(c.Request.Context(), c.Param("id"), req.OceanScores, req.RiasecCode)
	if err != nil {
		respondError(c, h.logger, err, "save profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ownedSession carga la sesion de la ruta y verifica que pertenezca al usuario del token.
func (h *AssessmentHandler) ownedSession(c *gin.Context) (service.SessionView, bool) {
	view, err := h.svc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "load session")
		return service.SessionView{}, false
	}
	if !authorizedFor(c, view.UserID) {
		writeError(c, http.StatusForbidden, "forbidden")
		return service.SessionView{}, false
	}
	return view, true
}
