package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	projectUC "github.com/fastygo/taskboard/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List projects
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) GetProjects(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	activeOnly := string(ctx.QueryArgs().Peek("active")) == "true"
	projects, err := h.uc.ListProjects(stdCtx, userID, activeOnly)
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	h.respondList(ctx, projects, transport.ListMeta{Count: len(projects)})
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	var req transport.ProjectCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.CreateProject(stdCtx, domain.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		CreatedBy:   userID,
	})
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, project)
}

// @Summary Get project
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	h.withProject(ctx, func(stdCtx context.Context, project *domain.Project) (*domain.Project, error) {
		return project, nil
	})
}

// @Summary Update project
// @Tags projects
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	var req transport.ProjectUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.withProject(ctx, func(stdCtx context.Context, project *domain.Project) (*domain.Project, error) {
		return h.uc.UpdateProject(stdCtx, project.ID, req.ToPatch())
	})
}

// @Summary Archive project
// @Tags projects
// @Router /api/v1/projects/{id}/archive [post]
func (h *ProjectHandler) ArchiveProject(ctx *fasthttp.RequestCtx) {
	h.withProject(ctx, func(stdCtx context.Context, project *domain.Project) (*domain.Project, error) {
		return h.uc.ArchiveProject(stdCtx, project.ID)
	})
}

// @Summary Restore project
// @Tags projects
// @Router /api/v1/projects/{id}/restore [post]
func (h *ProjectHandler) RestoreProject(ctx *fasthttp.RequestCtx) {
	h.withProject(ctx, func(stdCtx context.Context, project *domain.Project) (*domain.Project, error) {
		return h.uc.RestoreProject(stdCtx, project.ID)
	})
}

// @Summary Delete project
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.ownedProject(stdCtx, id, userID); err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	if err := h.uc.DeleteProject(stdCtx, id); err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *ProjectHandler) withProject(ctx *fasthttp.RequestCtx, fn func(context.Context, *domain.Project) (*domain.Project, error)) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.ownedProject(stdCtx, id, userID)
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	result, err := fn(stdCtx, project)
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

func (h *ProjectHandler) ownedProject(ctx context.Context, id, userID string) (*domain.Project, error) {
	project, err := h.uc.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.CreatedBy != userID {
		return nil, domain.Wrapf(domain.ErrProjectNotFound, "project %s", id)
	}
	return project, nil
}
