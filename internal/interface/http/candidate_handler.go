package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/internal/application"
	"github.com/oksasatya/interview-tracker/internal/interface/middleware"
	"github.com/oksasatya/interview-tracker/pkg/response"
	"github.com/oksasatya/interview-tracker/pkg/validation"
)

type CandidateHandler struct {
	Svc    *application.CandidateService
	Logger logrus.FieldLogger
}

func NewCandidateHandler(svc *application.CandidateService, logger logrus.FieldLogger) *CandidateHandler {
	return &CandidateHandler{Svc: svc, Logger: logger}
}

type createCandidateRequest struct {
	FullName       string   `json:"fullName" binding:"required"`
	Email          string   `json:"email" binding:"omitempty,email"`
	Phone          string   `json:"phone"`
	Position       string   `json:"position" binding:"required"`
	InterviewDate  string   `json:"interviewDate" binding:"required"`
	InterviewField string   `json:"interviewField" binding:"required"`
	InterviewRound string   `json:"interviewRound" binding:"required,round"`
	Status         string   `json:"status" binding:"omitempty,cstatus"`
	Feedback       string   `json:"feedback"`
	Score          *float64 `json:"score" binding:"omitempty,score"`
}

type updateCandidateRequest struct {
	FullName       *string  `json:"fullName"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	Phone          *string  `json:"phone"`
	Position       *string  `json:"position"`
	InterviewDate  *string  `json:"interviewDate"`
	InterviewField *string  `json:"interviewField"`
	InterviewRound *string  `json:"interviewRound" binding:"omitempty,round"`
	Status         *string  `json:"status" binding:"omitempty,cstatus"`
	Feedback       *string  `json:"feedback"`
	Score          *float64 `json:"score" binding:"omitempty,score"`
}

// ownerID returns the authenticated interviewer's id, answering 401 when absent.
func (h *CandidateHandler) ownerID(c *gin.Context) (string, bool) {
	me := middleware.Principal(c)
	if me == nil {
		handleServiceError(c, h.Logger, application.ErrUnauthorized)
		return "", false
	}
	return me.ID, true
}

// Create POST /api/candidate
func (h *CandidateHandler) Create(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req createCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	view, stats, err := h.Svc.Create(c.Request.Context(), owner, application.CandidateInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Position:       req.Position,
		InterviewDate:  req.InterviewDate,
		InterviewField: req.InterviewField,
		InterviewRound: req.InterviewRound,
		Status:         req.Status,
		Feedback:       req.Feedback,
		Score:          req.Score,
	})
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, view, "Candidate added successfully", response.WithStats(stats))
}

// List GET /api/candidate
func (h *CandidateHandler) List(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	views, stats, err := h.Svc.ListMine(c.Request.Context(), owner)
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "Candidates retrieved", response.WithCount(len(views)), response.WithStats(stats))
}

// ListAll GET /api/candidate/all
func (h *CandidateHandler) ListAll(c *gin.Context) {
	me := middleware.Principal(c)
	if me == nil {
		handleServiceError(c, h.Logger, application.ErrUnauthorized)
		return
	}
	views, stats, err := h.Svc.ListAll(c.Request.Context(), me.Role)
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "Candidates retrieved", response.WithCount(len(views)), response.WithStats(stats))
}

// Search GET /api/candidate/search?q=&size=
func (h *CandidateHandler) Search(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	views, err := h.Svc.Search(c.Request.Context(), owner, c.Query("q"), size)
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "Candidates retrieved", response.WithCount(len(views)))
}

// Get GET /api/candidate/:id
func (h *CandidateHandler) Get(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetOne(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "Candidate retrieved")
}

// Update PATCH /api/candidate/:id
func (h *CandidateHandler) Update(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req updateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	view, stats, err := h.Svc.Update(c.Request.Context(), owner, c.Param("id"), application.CandidatePatch{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Position:       req.Position,
		InterviewDate:  req.InterviewDate,
		InterviewField: req.InterviewField,
		InterviewRound: req.InterviewRound,
		Status:         req.Status,
		Feedback:       req.Feedback,
		Score:          req.Score,
	})
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "Candidate updated successfully", response.WithStats(stats))
}

// Delete DELETE /api/candidate/:id
func (h *CandidateHandler) Delete(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	stats, err := h.Svc.Delete(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "Candidate deleted successfully", response.WithStats(stats))
}

// UploadResume POST /api/candidate/:id/resume (multipart field "resume")
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	owner, ok := h.ownerID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.Error(c, http.StatusBadRequest, "Please fill all required fields", map[string]string{"resume": "is required"})
			return
		}
		response.Error(c, http.StatusBadRequest, "Invalid upload", validation.ToDetails(err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	defer f.Close()

	view, err := h.Svc.UploadResume(c.Request.Context(), owner, c.Param("id"), application.ResumeUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		handleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "Resume uploaded successfully")
}
