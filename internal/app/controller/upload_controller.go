package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/meditrack/meditrack-backend/internal/errors"
	"github.com/meditrack/meditrack-backend/internal/middleware"
	"github.com/meditrack/meditrack-backend/internal/storage"
)

// Presigner signs direct-to-bucket uploads.
type Presigner interface {
	PresignUpload(ctx context.Context, kind, filename, contentType string) (*storage.PresignedUpload, error)
}

type UploadController struct {
	storage Presigner
}

func NewUploadController(storage Presigner) *UploadController {
	useJSONFieldNames()
	return &UploadController{
		storage: storage,
	}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=prescription report symptom"`
}

// Presign generates a presigned URL for uploading a medical document
// POST /api/uploads/presign
func (ctrl *UploadController) Presign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg, fields := validationMessages(err)
		log.Warn("Invalid presign request", map[string]interface{}{
			"error": msg,
		})
		apperrors.RespondWithValidationError(c, msg, fields)
		return
	}

	upload, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Kind, req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeBlocked) || errors.Is(err, storage.ErrUnknownKind) {
			log.Warn("Rejected upload type", map[string]interface{}{
				"kind":         req.Kind,
				"content_type": req.ContentType,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG, PDF, DOC and DOCX files are allowed")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"kind":         req.Kind,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithDetail(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL", err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"user_id": userID,
		"kind":    req.Kind,
		"key":     upload.Key,
	})

	apperrors.Success(c, http.StatusOK, gin.H{
		"uploadUrl": upload.UploadURL,
		"fileUrl":   upload.FileURL,
		"key":       upload.Key,
	})
}
