package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/volunteerhub/internal/common"
	"github.com/dmitrijs2005/volunteerhub/internal/server/models"
	"github.com/dmitrijs2005/volunteerhub/internal/server/services"
	"github.com/gin-gonic/gin"
)

const msgBadBody = "invalid request body"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// writeError maps a service error onto a status code. Anything that is not a
// ServiceError is logged and reported as an internal error.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var se *common.ServiceError
	if !errors.As(err, &se) {
		s.logger.Error(c.Request.Context(), "unexpected error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": common.ErrorInternal.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"message": se.Message})
}

func (s *HTTPServer) ListVolunteers(c *gin.Context) {
	list, err := s.volunteers.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (s *HTTPServer) GetVolunteer(c *gin.Context) {
	v, err := s.volunteers.Get(c.Request.Context(), c.Param("volunteerId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

func (s *HTTPServer) RegisterVolunteer(c *gin.Context) {
	var reg models.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgBadBody})
		return
	}

	v, err := s.volunteers.Register(c.Request.Context(), reg)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "id", v.ID)
	c.JSON(http.StatusCreated, gin.H{"message": services.MsgRegistered})
}

func (s *HTTPServer) VerifyVolunteer(c *gin.Context) {
	if err := s.volunteers.Verify(c.Request.Context(), c.Param("volunteerId"), c.Param("token")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": services.MsgVerified})
}

func (s *HTTPServer) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgBadBody})
		return
	}

	session, err := s.volunteers.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *HTTPServer) UpdateVolunteer(c *gin.Context) {
	var patch models.VolunteerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgBadBody})
		return
	}

	v, err := s.volunteers.Update(c.Request.Context(), c.Param("volunteerId"), patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

// DeleteVolunteer answers 204; net/http drops the message body for that status.
func (s *HTTPServer) DeleteVolunteer(c *gin.Context) {
	if err := s.volunteers.Delete(c.Request.Context(), c.Param("volunteerId")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, gin.H{"message": services.MsgDeleted})
}

func (s *HTTPServer) DeleteAllVolunteers(c *gin.Context) {
	if err := s.volunteers.DeleteAll(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, gin.H{"message": services.MsgAllDeleted})
}

func (s *HTTPServer) Session(c *gin.Context) {
	claims, _ := c.Get(claimsKey)
	c.JSON(http.StatusOK, gin.H{"data": claims})
}

func (s *HTTPServer) Health(c *gin.Context) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
