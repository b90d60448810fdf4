package api

import (
	"net/http"
	"strconv"

	"forecastbonus/app"
	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/internal/accuracy"
	"forecastbonus/internal/errors"

	"github.com/gin-gonic/gin"
)

// ScoringHandler serves scoring requests over posted assignment records
type ScoringHandler struct {
	scoring  *app.ScoringService
	analyzer *accuracy.Analyzer
}

// NewScoringHandler creates a new scoring handler
func NewScoringHandler(scoring *app.ScoringService, analyzer *accuracy.Analyzer) *ScoringHandler {
	return &ScoringHandler{
		scoring:  scoring,
		analyzer: analyzer,
	}
}

// RoundRequest is the body of a per-round scoring request
type RoundRequest struct {
	RoundN      int               `json:"roundN"`
	Predictions experiment.Series `json:"predictions"`
	Actuals     experiment.Series `json:"actuals"`
	Task        experiment.Task   `json:"task"`
}

// OverviewRequest carries the task list of a study
type OverviewRequest struct {
	Tasks []experiment.Task `json:"tasks"`
}

// TaskScore scores one task of the posted assignment, selected by ?index=N
func (h *ScoringHandler) TaskScore(c *gin.Context) {
	taskN, err := strconv.Atoi(c.DefaultQuery("index", "0"))
	if err != nil {
		respondError(c, errors.InvalidInput("index must be an integer"))
		return
	}

	assignment, ok := bindAssignment(c)
	if !ok {
		return
	}

	result, err := h.scoring.TotalTaskScore(taskN, assignment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExperimentScore sums the task scores of the posted assignment
func (h *ScoringHandler) ExperimentScore(c *gin.Context) {
	assignment, ok := bindAssignment(c)
	if !ok {
		return
	}

	total, err := h.scoring.TotalExperimentScore(assignment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignmentId": assignment.ID(),
		"totalScore":   total,
	})
}

// Earnings returns the per-task breakdown and total bonus of the posted assignment
func (h *ScoringHandler) Earnings(c *gin.Context) {
	assignment, ok := bindAssignment(c)
	if !ok {
		return
	}

	breakdown, err := h.scoring.Breakdown(assignment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// RoundScore scores every horizon of one round without selection
func (h *ScoringHandler) RoundScore(c *gin.Context) {
	var req RoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid round request: "+err.Error()))
		return
	}

	scores, err := h.scoring.GetScore(req.RoundN, req.Predictions, req.Actuals, req.Task)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roundN": req.RoundN, "scores": scores})
}

// Accuracy returns diagnostic accuracy summaries for the posted assignment
func (h *ScoringHandler) Accuracy(c *gin.Context) {
	assignment, ok := bindAssignment(c)
	if !ok {
		return
	}

	tasks, err := h.analyzer.ForAssignment(assignment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignmentId": assignment.ID(),
		"tasks":        tasks,
	})
}

// Overview describes a study from its task list
func (h *ScoringHandler) Overview(c *gin.Context) {
	var req OverviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("invalid overview request: "+err.Error()))
		return
	}

	overview, err := experiment.NewOverview(req.Tasks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func bindAssignment(c *gin.Context) (*experiment.Assignment, bool) {
	var assignment experiment.Assignment
	if err := c.ShouldBindJSON(&assignment); err != nil {
		respondError(c, errors.InvalidInput("invalid assignment record: "+err.Error()))
		return nil, false
	}
	return &assignment, true
}

// respondError writes err with the status that matches its classification
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err) || code == errors.CodeNotFound:
		status = http.StatusNotFound
		code = errors.CodeNotFound
	case code == errors.CodeInvalidConfiguration, code == errors.CodeMissingData, code == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}
