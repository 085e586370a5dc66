package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grantreview-backend/internal/application"
	"grantreview-backend/internal/extract"
	"grantreview-backend/internal/notify"
	"grantreview-backend/internal/shared/server/respond"
	"grantreview-backend/internal/shared/telemetry"
)

// reviewTimeout bounds one background review flow end to end.
const reviewTimeout = 5 * time.Minute

const maxDocumentBytes = 10 << 20

// Handler exposes the submission and review-history endpoints.
// Submission outcomes are reported in the response body; the transport
// status stays 200 so upstream chat relays always read the message.
type Handler struct {
	Svc    *Service
	Notify notify.Func

	// Dispatch runs the review flow after a submission is acknowledged.
	// Nil spawns a goroutine; tests substitute a synchronous runner.
	Dispatch func(task func())
}

type submitRequest struct {
	Application string `json:"application"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RegisterRoutes registers the review endpoints on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/submit", h.SubmitInfo)
	r.POST("/submit", h.Submit)
	r.POST("/submit/document", h.SubmitDocument)
	r.GET("/reviews", h.ListReviews)
	r.GET("/reviews/latest", h.LatestReview)
}

// SubmitInfo documents the submission endpoint for GET probes.
func (h *Handler) SubmitInfo(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Status:  "ok",
		Message: "Submit a grant application as JSON via POST",
	})
}

// Submit accepts a JSON-encoded application, validates it, acknowledges
// receipt, and hands the review flow to the reviewer.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Application == "" {
		c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Invalid application format"})
		return
	}
	h.accept(c, req.Application)
}

// SubmitDocument accepts a multipart PDF upload, extracts its text, and
// submits the assembled application on the uploader's behalf.
func (h *Handler) SubmitDocument(c *gin.Context) {
	userID := c.PostForm("userId")
	if userID == "" {
		c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Invalid application data"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Invalid application format"})
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Document too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "DOCUMENT_READ_FAILED", "could not read uploaded document", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "DOCUMENT_READ_FAILED", "could not read uploaded document", nil)
		return
	}

	text, err := extract.Text(data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Unsupported document type"})
			return
		}
		c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Invalid application format"})
		return
	}

	rec := application.Record{
		ID:      uuid.NewString(),
		Name:    fileHeader.Filename,
		Content: text,
		MetaData: map[string]any{
			"user_id":          userID,
			"chat_id":          c.PostForm("chatId"),
			"application_id":   uuid.NewString(),
			"application_date": time.Now().UTC().Format(time.RFC3339),
		},
		DocumentType: "application",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "DOCUMENT_ENCODE_FAILED", "could not encode application", nil)
		return
	}
	h.accept(c, string(payload))
}

// accept validates the application payload, acknowledges receipt, and
// dispatches the review flow.
func (h *Handler) accept(c *gin.Context, raw string) {
	rec, err := application.Parse(raw)
	if err != nil {
		if errors.Is(err, application.ErrMissingUser) {
			c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Invalid application data"})
			return
		}
		c.JSON(http.StatusOK, statusResponse{Status: "error", Message: "Invalid application format"})
		return
	}

	userID := rec.UserID()
	sessionID := fmt.Sprintf("grant_review_%s_%s", userID, rec.ChatID())
	message := "\U0001F4DD " + NewApplicationMarker + "\n\n" + raw

	h.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
		defer cancel()
		if _, err := h.Svc.Review(ctx, message, userID, sessionID, h.Notify); err != nil {
			telemetry.Error("review flow failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	})

	c.JSON(http.StatusOK, statusResponse{
		Status:  "success",
		Message: "Application received and sent to the funder",
	})
}

func (h *Handler) dispatch(task func()) {
	if h.Dispatch != nil {
		h.Dispatch(task)
		return
	}
	go task()
}

// ListReviews returns all reviews for a user, newest first.
func (h *Handler) ListReviews(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "MISSING_USER_ID", "userId query parameter is required", nil)
		return
	}

	reviews, err := h.Svc.Repo.GetReviews(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "LEDGER_UNAVAILABLE", "could not load reviews", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// LatestReview returns the most recent review for a user.
func (h *Handler) LatestReview(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "MISSING_USER_ID", "userId query parameter is required", nil)
		return
	}

	rec, err := h.Svc.Repo.GetLatestReview(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "no reviews on record for this user", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "LEDGER_UNAVAILABLE", "could not load review", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": rec})
}
