package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tuition-backend/internal/repository"
	"github.com/stemsi/tuition-backend/internal/response"
	"github.com/stemsi/tuition-backend/internal/service"
)

type errMapping struct {
	target error
	status int
	code   response.ErrCode
}

// errMappings is checked in order; the first match wins.
var errMappings = []errMapping{
	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrClassHasStudents, http.StatusConflict, response.ErrClassHasStudents},
	{repository.ErrDuplicate, http.StatusConflict, response.ErrConflict},
	{repository.ErrUnknownReference, http.StatusBadRequest, response.ErrUnknownReference},
	{service.ErrUnknownClass, http.StatusBadRequest, response.ErrUnknownReference},
	{service.ErrUnknownStudent, http.StatusBadRequest, response.ErrUnknownReference},
	{service.ErrClassClosed, http.StatusConflict, response.ErrClassClosed},
	{service.ErrClassNotClosed, http.StatusConflict, response.ErrClassNotClosed},
	{service.ErrStudentNotActive, http.StatusConflict, response.ErrStudentNotActive},
	{service.ErrStudentInactive, http.StatusConflict, response.ErrStudentInactive},
	{service.ErrNotSuspended, http.StatusConflict, response.ErrNotSuspended},
	{service.ErrAlreadyProrated, http.StatusConflict, response.ErrAlreadyProrated},
	{service.ErrRestartBeforeSuspend, http.StatusBadRequest, response.ErrRestartBeforeSuspend},
	{service.ErrInvalidPeriod, http.StatusBadRequest, response.ErrInvalidPeriod},
	{service.ErrInvalidSetting, http.StatusBadRequest, response.ErrInvalidSetting},
	{service.ErrInvalidInput, http.StatusBadRequest, response.ErrValidation},
	{service.ErrPortalNotFound, http.StatusNotFound, response.ErrPortalNotFound},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
}

// failWith writes the error response matching err. Unmapped errors become
// 500 and are attached to the gin context for the access log.
func failWith(c *gin.Context, err error) {
	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			response.Fail(c, m.status, m.code)
			return
		}
	}
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// paramID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
