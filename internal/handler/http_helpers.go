package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError 把校验错误映射为 400，其余错误记录日志后返回不含细节的 500。
func (a *API) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlug):
		respondError(c, http.StatusBadRequest, "slug is required and must not contain whitespace, ':' or '/'")
	case errors.Is(err, service.ErrInvalidReadingTime):
		respondError(c, http.StatusBadRequest, "readingTime must be a positive number of seconds")
	default:
		a.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, internalErrorMessage)
	}
}

func parsePositiveInt(value string, fallback int) int {
	num, err := strconv.Atoi(value)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

func normalizedSlug(raw string) string {
	return strings.TrimSpace(raw)
}
