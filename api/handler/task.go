package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

const (
	defaultTaskLimit = 50
	maxTaskLimit     = 500
)

// Task listing shortcuts selected with ?view=.
const (
	viewOverdue  = "overdue"
	viewToday    = "today"
	viewThisWeek = "week"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		tasks []*domain.Task
		err   error
		meta  transport.ListMeta
	)
	switch view := string(ctx.QueryArgs().Peek("view")); view {
	case viewOverdue:
		tasks, err = h.uc.OverdueTasks(stdCtx, userID)
	case viewToday:
		tasks, err = h.uc.TasksDueToday(stdCtx, userID)
	case viewThisWeek:
		tasks, err = h.uc.TasksDueThisWeek(stdCtx, userID)
	case "":
		query, perr := parseTaskQuery(ctx.QueryArgs(), userID)
		if perr != nil {
			h.respondError(ctx, perr)
			return
		}
		meta.Limit, meta.Offset = query.Limit, query.Offset
		tasks, err = h.uc.ListTasks(stdCtx, query)
	default:
		h.badRequest(ctx, "unknown view "+strconv.Quote(view))
		return
	}
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	meta.Count = len(tasks)
	h.respondList(ctx, tasks, meta)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, req.ToInput(userID))
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return task, nil
	})
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.UpdateTask(stdCtx, task.ID, req.ToPatch())
	})
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
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

	if _, err := h.visibleTask(stdCtx, id, userID); err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.ToggleCompletion(stdCtx, task.ID)
	})
}

// @Summary Assign task
// @Tags tasks
// @Router /api/v1/tasks/{id}/assign [post]
func (h *TaskHandler) AssignTask(ctx *fasthttp.RequestCtx) {
	var req transport.AssignRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.AssignTask(stdCtx, task.ID, req.AssigneeID)
	})
}

// @Summary Comment on task
// @Tags tasks
// @Router /api/v1/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(ctx *fasthttp.RequestCtx) {
	var req transport.CommentRequest
	if !h.decode(ctx, &req) {
		return
	}
	author := httpcontext.UserID(ctx)
	h.withTaskStatus(ctx, http.StatusCreated, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.AddComment(stdCtx, task.ID, author, req.Body)
	})
}

// @Summary Add subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/subtasks [post]
func (h *TaskHandler) AddSubtask(ctx *fasthttp.RequestCtx) {
	var req transport.SubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.withTaskStatus(ctx, http.StatusCreated, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.AddSubtask(stdCtx, task.ID, req.Title)
	})
}

// @Summary Update subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/subtasks/{subtaskID} [put]
func (h *TaskHandler) UpdateSubtask(ctx *fasthttp.RequestCtx) {
	subtaskID, ok := h.pathParam(ctx, "subtaskID")
	if !ok {
		return
	}
	var req transport.SubtaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch := domain.SubtaskPatch{Title: req.Title, Completed: req.Completed}
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.UpdateSubtask(stdCtx, task.ID, subtaskID, patch)
	})
}

// @Summary Toggle subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/subtasks/{subtaskID}/toggle [post]
func (h *TaskHandler) ToggleSubtask(ctx *fasthttp.RequestCtx) {
	subtaskID, ok := h.pathParam(ctx, "subtaskID")
	if !ok {
		return
	}
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.ToggleSubtask(stdCtx, task.ID, subtaskID)
	})
}

// @Summary Delete subtask
// @Tags tasks
// @Router /api/v1/tasks/{id}/subtasks/{subtaskID} [delete]
func (h *TaskHandler) DeleteSubtask(ctx *fasthttp.RequestCtx) {
	subtaskID, ok := h.pathParam(ctx, "subtaskID")
	if !ok {
		return
	}
	h.withTask(ctx, func(stdCtx context.Context, task *domain.Task) (*domain.Task, error) {
		return h.uc.DeleteSubtask(stdCtx, task.ID, subtaskID)
	})
}

func (h *TaskHandler) withTask(ctx *fasthttp.RequestCtx, fn func(context.Context, *domain.Task) (*domain.Task, error)) {
	h.withTaskStatus(ctx, http.StatusOK, fn)
}

// withTaskStatus resolves {id}, checks the caller may see it and runs fn.
func (h *TaskHandler) withTaskStatus(ctx *fasthttp.RequestCtx, status int, fn func(context.Context, *domain.Task) (*domain.Task, error)) {
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

	task, err := h.visibleTask(stdCtx, id, userID)
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	result, err := fn(stdCtx, task)
	if err != nil {
		h.respondFailure(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, status, result)
}

// visibleTask loads a task owned by or assigned to userID. Tasks belonging
// to someone else are reported as missing.
func (h *TaskHandler) visibleTask(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := h.uc.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.VisibleTo(userID) {
		return nil, domain.Wrapf(domain.ErrTaskNotFound, "task %s", id)
	}
	return task, nil
}

func parseTaskQuery(args *fasthttp.Args, userID string) (domain.TaskQuery, error) {
	query := domain.TaskQuery{
		OwnerID:   userID,
		ProjectID: string(args.Peek("project")),
		Tag:       string(args.Peek("tag")),
		Search:    string(args.Peek("search")),
		Limit:     parseInt(string(args.Peek("limit")), defaultTaskLimit),
		Offset:    parseInt(string(args.Peek("offset")), 0),
	}
	if query.Limit <= 0 || query.Limit > maxTaskLimit {
		query.Limit = defaultTaskLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	if raw := string(args.Peek("priority")); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return query, err
		}
		query.Priority = priority
	}
	if raw := string(args.Peek("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return query, domain.Wrapf(domain.ErrInvalidPayload, "completed %q", raw)
		}
		query.Completed = &completed
	}

	var err error
	if query.DueFrom, err = parseTimeArg(args, "due_from"); err != nil {
		return query, err
	}
	if query.DueTo, err = parseTimeArg(args, "due_to"); err != nil {
		return query, err
	}

	field, err := domain.ParseSortField(string(args.Peek("sort")))
	if err != nil {
		return query, err
	}
	query.Sort = domain.TaskSort{Field: field, Desc: string(args.Peek("order")) == "desc"}
	return query, nil
}

func parseTimeArg(args *fasthttp.Args, name string) (*time.Time, error) {
	raw := string(args.Peek(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Wrapf(domain.ErrInvalidPayload, "%s %q", name, raw)
	}
	return &parsed, nil
}
