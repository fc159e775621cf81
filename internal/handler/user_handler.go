package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/service"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/middleware"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

const avatarFormField = "file"

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.svc.Users.GetUser(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to get user")
		return
	}

	response.Success(c, user)
}

// UpdateMe applies a partial update to the caller's account.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req domain.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Users.UpdateMe(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		handleError(c, err, "failed to update user")
		return
	}

	response.Success(c, user)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req domain.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.Users.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		handleError(c, err, "failed to change password")
		return
	}

	response.Success(c, gin.H{"message": "password changed successfully"})
}

// UploadAvatar accepts a multipart image in the "file" field.
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// Leave room for the multipart envelope around the file.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+64<<10)
	}

	fh, err := c.FormFile(avatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(c, service.ErrFileTooLarge, "failed to upload avatar")
			return
		}
		response.BadRequest(c, "multipart field \"file\" is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "failed to read uploaded file")
		return
	}
	defer f.Close()

	result, err := h.svc.Users.UploadAvatar(c.Request.Context(), middleware.GetUserID(c), f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		handleError(c, err, "failed to upload avatar")
		return
	}

	response.Success(c, result)
}

// DeleteMe soft-deletes the caller's account.
func (h *Handler) DeleteMe(c *gin.Context) {
	if err := h.svc.Users.DeleteMe(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		handleError(c, err, "failed to delete account")
		return
	}

	response.Success(c, gin.H{"message": "account deleted"})
}
