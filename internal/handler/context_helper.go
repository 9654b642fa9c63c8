package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/middleware"
	"github.com/noah-isme/campus-events-console/internal/service"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

func eventIDParam(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.NewValidationError("event_id", "must be a positive integer")
	}
	return id, nil
}

func snapshotMeta[T any](c *gin.Context, snap service.Snapshot[T]) map[string]interface{} {
	return middleware.MergeMeta(c, snap.Meta())
}
