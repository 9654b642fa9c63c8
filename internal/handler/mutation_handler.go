package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/response"
)

type mutationStatusReader interface {
	StatusesWithPrefix(prefix string) map[string]models.MutationStatus
}

// MutationHandler exposes the state of in-flight and settled writes.
type MutationHandler struct {
	service mutationStatusReader
}

// NewMutationHandler constructs the handler.
func NewMutationHandler(service mutationStatusReader) *MutationHandler {
	return &MutationHandler{service: service}
}

// List godoc
// @Summary Write states by key prefix
// @Tags Staff
// @Produce json
// @Param prefix query string true "Key prefix, e.g. attendance:7:"
// @Success 200 {object} response.Envelope
// @Router /staff/mutations [get]
func (h *MutationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "mutation coordinator not configured"))
		return
	}
	prefix := strings.TrimSpace(c.Query("prefix"))
	if prefix == "" {
		response.Error(c, appErrors.NewValidationError("prefix", "is required"))
		return
	}
	statuses := h.service.StatusesWithPrefix(prefix)
	out := make([]models.MutationStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	response.JSON(c, http.StatusOK, out, map[string]interface{}{"count": len(out)})
}
