package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"appusers/internal/domain"
)

// Error writes err with the HTTP status its Kind maps to. Internal
// errors are reported as a bare 500 so store details never leak to the
// caller.
func Error(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := StatusOf(kind)
	msg := err.Error()
	if kind == domain.KindInternal {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created writes 201 with a Location header pointing at the new
// resource.
func Created(c *gin.Context, location string, data any) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, data)
}
