package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"resumeapi/internal/api/middleware"
	"resumeapi/internal/database"
	"resumeapi/internal/resume"
)

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	repo   resume.Repository
	logger *slog.Logger
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(repo resume.Repository, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{
		repo:   repo,
		logger: logger,
	}
}

var errInvalidResumeID = errors.New("invalid resume id")

type createResumeRequest struct {
	FullName       string         `json:"full_name" binding:"required"`
	Email          string         `json:"email" binding:"required,email"`
	Phone          string         `json:"phone" binding:"required"`
	LinkedinURL    string         `json:"linkedin_url"`
	Education      datatypes.JSON `json:"education"`
	WorkExperience datatypes.JSON `json:"work_experience"`
	Skills         pq.StringArray `json:"skills"`
}

type updateResumeRequest struct {
	FullName       *string         `json:"full_name"`
	Email          *string         `json:"email" binding:"omitempty,email"`
	Phone          *string         `json:"phone"`
	LinkedinURL    *string         `json:"linkedin_url"`
	Education      *datatypes.JSON `json:"education"`
	WorkExperience *datatypes.JSON `json:"work_experience"`
	Skills         *pq.StringArray `json:"skills"`
}

// ListResumes 按分页与可选技能过滤列出简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil || skip < 0 {
		BadRequest(c, "skip must be a non-negative integer")
		return
	}
	limit, err := queryInt(c, "limit", resume.DefaultLimit)
	if err != nil || limit <= 0 {
		BadRequest(c, "limit must be a positive integer")
		return
	}

	resumes, err := h.repo.List(c.Request.Context(), resume.ListParams{
		Skip:  skip,
		Limit: limit,
		Skill: c.Query("skill"),
	})
	if err != nil {
		h.loggerFromContext(c).Error("list resumes failed", slog.Any("error", err))
		Internal(c, "failed to list resumes")
		return
	}

	if resumes == nil {
		resumes = []database.Resume{}
	}
	c.JSON(http.StatusOK, resumes)
}

// GetResume 返回指定 ID 的简历。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	id, err := resumeIDParam(c)
	if err != nil {
		BadRequest(c, "invalid resume id")
		return
	}

	record, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		h.loggerFromContext(c).Error("get resume failed", slog.Any("error", err))
		Internal(c, "failed to query resume")
		return
	}
	if record == nil {
		NotFound(c, "resume not found")
		return
	}

	c.JSON(http.StatusOK, record)
}

// CreateResume 保存一份新的简历，邮箱重复返回 409。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	record := database.Resume{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		LinkedinURL:    req.LinkedinURL,
		Education:      req.Education,
		WorkExperience: req.WorkExperience,
		Skills:         req.Skills,
	}

	if err := h.repo.Create(c.Request.Context(), &record); err != nil {
		if errors.Is(err, resume.ErrEmailTaken) {
			Conflict(c, "email already exists")
			return
		}
		h.loggerFromContext(c).Error("create resume failed", slog.Any("error", err))
		Internal(c, "failed to create resume")
		return
	}

	c.JSON(http.StatusCreated, record)
}

// UpdateResume 对指定简历做部分更新，只改动请求中出现的字段。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	id, err := resumeIDParam(c)
	if err != nil {
		BadRequest(c, "invalid resume id")
		return
	}

	var req updateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	patch := resume.Update{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		LinkedinURL:    req.LinkedinURL,
		Education:      req.Education,
		WorkExperience: req.WorkExperience,
		Skills:         req.Skills,
	}

	record, err := h.repo.Update(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, resume.ErrEmailTaken) {
			Conflict(c, "email already exists")
			return
		}
		h.loggerFromContext(c).Error("update resume failed", slog.Any("error", err))
		Internal(c, "failed to update resume")
		return
	}
	if record == nil {
		NotFound(c, "resume not found")
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteResume 删除指定简历，成功时无响应体。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	id, err := resumeIDParam(c)
	if err != nil {
		BadRequest(c, "invalid resume id")
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.loggerFromContext(c).Error("delete resume failed", slog.Any("error", err))
		Internal(c, "failed to delete resume")
		return
	}
	if !deleted {
		NotFound(c, "resume not found")
		return
	}

	c.Status(http.StatusNoContent)
}

func resumeIDParam(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidResumeID
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (h *ResumeHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
