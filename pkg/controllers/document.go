package controllers

import (
	"context"
	"io"
	"net/http"

	"shay-b-io/api/internal/common"
	"shay-b-io/api/pkg/models"
	"shay-b-io/api/pkg/services"
	"shay-b-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type DocumentController struct {
	documentService services.DocumentService
}

func InitDocumentController(documentService services.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

// UploadIdentityDocument -> POST /sellers/:sellerid/documents
// Multipart form: file + purpose.
func (dc *DocumentController) UploadIdentityDocument() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), common.REQUEST_TIMEOUT_SECS)
		defer cancel()

		sellerID, ok := sellerIDParam(c)
		if !ok {
			return
		}

		var purpose models.DocumentPurpose
		purpose, err := purpose.ParseDocumentPurpose(c.PostForm("purpose"))
		if err != nil {
			status, code := statusForError(err)
			util.HandleErrorCode(c, status, code, err)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			util.HandleErrorCode(c, http.StatusBadRequest, "validation_error", errors.Wrap(err, "document file is required"))
			return
		}
		if fileHeader.Size > common.MAX_DOCUMENT_SIZE {
			status, code := statusForError(models.ErrDocumentTooLarge)
			util.HandleErrorCode(c, status, code, models.ErrDocumentTooLarge)
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			util.HandleErrorCode(c, http.StatusBadRequest, "validation_error", errors.Wrap(err, "failed to open uploaded file"))
			return
		}
		defer f.Close()

		// Bounded read even if the reported size lied.
		data, err := io.ReadAll(io.LimitReader(f, common.MAX_DOCUMENT_SIZE+1))
		if err != nil {
			util.HandleErrorCode(c, http.StatusBadRequest, "validation_error", errors.Wrap(err, "failed to read uploaded file"))
			return
		}

		doc := models.DocumentUpload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Purpose:     purpose,
			Data:        data,
		}

		fileID, err := dc.documentService.UploadDocument(ctx, sellerID, doc)
		if err != nil {
			status, code := statusForError(err)
			util.HandleErrorCode(c, status, code, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Document uploaded successfully", gin.H{"file_id": fileID})
	}
}
