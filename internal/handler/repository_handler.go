package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/gitmsg"
	"fruitygit/internal/model"
	"fruitygit/internal/service"
)

// RepositoryHandler serves the git API.
type RepositoryHandler struct {
	svc service.RepositoryService
}

// NewRepositoryHandler creates a new repository handler.
func NewRepositoryHandler(svc service.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{svc: svc}
}

// InitRequest is the body of an init call.
type InitRequest struct {
	IsPrivate   bool   `json:"is_private"`
	Description string `json:"description" validate:"max=2000"`
}

// ListRequest optionally names another user whose public repositories to list.
type ListRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdateRequest changes repository metadata. Absent fields stay as they are.
type UpdateRequest struct {
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPrivate   *bool   `json:"is_private"`
}

// RepositoryListResponse lists repositories.
type RepositoryListResponse struct {
	Count        int                `json:"count"`
	Repositories []model.Repository `json:"repositories"`
}

// HistoryResponse lists commits, newest first.
type HistoryResponse struct {
	Count   int            `json:"count"`
	Commits []model.Commit `json:"commits"`
}

// LegacyHistoryResponse carries delimiter encoded entries for old clients.
type LegacyHistoryResponse struct {
	Count   int      `json:"count"`
	Commits []string `json:"commits"`
}

// FilesResponse is the working tree of a repository.
type FilesResponse struct {
	Files []model.FileEntry `json:"files"`
}

// Init godoc
// @Summary Create a repository
// @Tags git
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Param request body InitRequest false "Visibility and description"
// @Success 201 {object} model.Repository
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /git/{repo}/init [post]
func (h *RepositoryHandler) Init(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req InitRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	repo, err := h.svc.Init(c.Request().Context(), p, c.Param("repo"), req.IsPrivate, req.Description)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, repo)
}

// Commit godoc
// @Summary Commit one file
// @Description Writes the uploaded file at the repository root, stages and commits it as the caller.
// @Tags git
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Param file formData file true "File to commit"
// @Param summary formData string true "Commit summary"
// @Param description formData string false "Commit description"
// @Success 200 {object} model.CommitResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /git/{repo}/commit [post]
func (h *RepositoryHandler) Commit(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return errorResponse(apperrors.ErrNoFile)
		case errors.Is(err, echo.ErrStatusRequestEntityTooLarge):
			return errorResponse(apperrors.ErrFileTooLarge)
		}
		return badRequest("invalid multipart body")
	}

	summary := c.FormValue("summary")
	if summary == "" {
		return badRequest("summary is required")
	}

	src, err := header.Open()
	if err != nil {
		return errorResponse(fmt.Errorf("open upload: %w", err))
	}
	defer src.Close()

	result, err := h.svc.Commit(c.Request().Context(), p, c.Param("repo"), service.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Content:  src,
	}, summary, c.FormValue("description"))
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, result)
}

// History godoc
// @Summary Commit history
// @Tags git
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Param format query string false "legacy for delimiter encoded entries"
// @Success 200 {object} HistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /git/{repo}/history [post]
func (h *RepositoryHandler) History(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	commits, err := h.svc.History(c.Request().Context(), p, c.Param("repo"))
	if err != nil {
		return errorResponse(err)
	}

	if c.QueryParam("format") == "legacy" {
		entries := make([]string, 0, len(commits))
		for _, commit := range commits {
			entries = append(entries, gitmsg.LegacyEntry(commit))
		}
		return c.JSON(http.StatusOK, LegacyHistoryResponse{Count: len(entries), Commits: entries})
	}
	return c.JSON(http.StatusOK, HistoryResponse{Count: len(commits), Commits: commits})
}

// List godoc
// @Summary List repositories
// @Description Without email, every repository of the caller. With another user's email, only their public repositories.
// @Tags git
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ListRequest false "Owner filter"
// @Success 200 {object} RepositoryListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /git/repositories [post]
func (h *RepositoryHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	repos, err := h.svc.List(c.Request().Context(), p, req.Email)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, RepositoryListResponse{Count: len(repos), Repositories: repos})
}

// Download godoc
// @Summary Download a repository as zip
// @Tags git
// @Produce application/zip
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Success 200 {file} binary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /git/{repo}/download [post]
func (h *RepositoryHandler) Download(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	name := c.Param("repo")
	archive, err := h.svc.Download(c.Request().Context(), p, name)
	if err != nil {
		return errorResponse(err)
	}
	defer archive.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": name + ".zip"}))
	return c.Stream(http.StatusOK, "application/zip", archive)
}

// Files godoc
// @Summary Working tree listing
// @Tags git
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Success 200 {object} FilesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /git/{repo}/files [post]
func (h *RepositoryHandler) Files(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	files, err := h.svc.Files(c.Request().Context(), p, c.Param("repo"))
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, FilesResponse{Files: files})
}

// Get godoc
// @Summary Repository metadata
// @Tags git
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Success 200 {object} model.Repository
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /git/{repo} [get]
func (h *RepositoryHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	repo, err := h.svc.Get(c.Request().Context(), p, c.Param("repo"))
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, repo)
}

// Update godoc
// @Summary Update repository metadata
// @Tags git
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Param request body UpdateRequest true "Fields to change"
// @Success 200 {object} model.Repository
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /git/{repo} [patch]
func (h *RepositoryHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	repo, err := h.svc.Update(c.Request().Context(), p, c.Param("repo"), service.RepositoryUpdate{
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, repo)
}

// Delete godoc
// @Summary Delete a repository
// @Tags git
// @Produce json
// @Security BearerAuth
// @Param repo path string true "Repository name"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /git/{repo}/delete [post]
func (h *RepositoryHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	name := c.Param("repo")
	if err := h.svc.Delete(c.Request().Context(), p, name); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("repository %s deleted", name),
	})
}
