package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/curator/internal/adapters/repository"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
)

// ProjectDependencies defines the interface for forest snapshots.
type ProjectDependencies interface {
	Replace(ctx context.Context, forest model.Forest) error
	UpsertProject(ctx context.Context, p *model.Project) error
	Forest(ctx context.Context) model.Forest
	Summary(ctx context.Context) types.Summary
}

// ProjectsHandler handles forest uploads and downloads.
type ProjectsHandler struct {
	deps ProjectDependencies
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps ProjectDependencies) *ProjectsHandler {
	return &ProjectsHandler{deps: deps}
}

// HandlePutProjects handles PUT /projects. The body is the full forest keyed by project id.
func (h *ProjectsHandler) HandlePutProjects(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_projects"

	var forest model.Forest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&forest); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Replace(r.Context(), forest); err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Summary(r.Context()))
}

// HandlePutProject handles PUT /projects/{id}. The body is one project; its id
// defaults to the path id and must match it when present.
func (h *ProjectsHandler) HandlePutProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_project"

	id := r.PathValue("id")
	var p model.Project
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if p.ID == "" {
		p.ID = id
	}
	if p.ID != id {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("project id does not match path")))
		return
	}
	if err := h.deps.UpsertProject(r.Context(), &p); err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Summary(r.Context()))
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrInvalidForest) {
		writeError(w, http.StatusBadRequest, "invalid_forest", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
}

// HandleGetProjects handles GET /projects.
func (h *ProjectsHandler) HandleGetProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Forest(r.Context()))
}
