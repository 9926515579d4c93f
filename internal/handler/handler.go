// Package handler holds the helpers shared by the HTTP handlers.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/middleware"
	"github.com/gorica/clinic-api/internal/model"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

// ParseID reads a uuid path parameter. A malformed id cannot name a stored
// row, so it is reported as resource not found.
func ParseID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		_ = c.Error(apperrors.NotFound(resource))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON decodes and validates the request body, recording a validation
// error on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(middleware.BindError(err))
		return false
	}
	return true
}

// BindQuery is BindJSON for the query string.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		_ = c.Error(middleware.BindError(err))
		return false
	}
	return true
}

// Principal returns the authenticated caller or nil.
func Principal(c *gin.Context) *model.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}
