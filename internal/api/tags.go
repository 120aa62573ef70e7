package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/internal/service/tagging"
)

// submitTagRequest is the JSON body of a tag submission.
type submitTagRequest struct {
	TagID        string   `json:"tag_id"`
	CreatorID    uint     `json:"creator_id" binding:"required"`
	Plate        string   `json:"plate" binding:"required"`
	Jurisdiction string   `json:"jurisdiction" binding:"required"`
	Polarity     string   `json:"polarity" binding:"required"`
	Reason       string   `json:"reason"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// SubmitTag processes a tag submission.
// POST /api/v1/tags.
func (h *Handler) SubmitTag(c *gin.Context) {
	var req submitTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.taggingService.Submit(c.Request.Context(), tagging.Request{
		TagID:        req.TagID,
		CreatorID:    req.CreatorID,
		Plate:        req.Plate,
		Jurisdiction: req.Jurisdiction,
		Polarity:     models.Polarity(req.Polarity),
		Reason:       req.Reason,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		h.tagSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"result":  result,
	})
}

// tagSubmissionError maps pipeline errors to HTTP responses. Validation
// failures get actionable messages; anything else is a generic retry
// suggestion because the failed step is not exposed to the end user.
func (h *Handler) tagSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidJurisdiction):
		h.errorResponse(c, http.StatusBadRequest, "Select a valid two-letter state code")
	case errors.Is(err, models.ErrInvalidPlate):
		h.errorResponse(c, http.StatusBadRequest, "Plate must be 3 to 8 characters")
	case errors.Is(err, models.ErrMissingReason):
		h.errorResponse(c, http.StatusBadRequest, "Add a reason for the tag")
	case errors.Is(err, models.ErrInvalidPolarity):
		h.errorResponse(c, http.StatusBadRequest, "Polarity must be positive or negative")
	case errors.Is(err, models.ErrSelfTag):
		h.errorResponse(c, http.StatusUnprocessableEntity, "You cannot tag your own plate")
	case errors.Is(err, models.ErrInsufficientBalance):
		h.errorResponse(c, http.StatusConflict, "You don't have any tags of that type left. Visit the shop to get more")
	case errors.Is(err, models.ErrUserNotFound):
		h.errorResponse(c, http.StatusNotFound, "User not found")
	default:
		h.log.Error().Err(err).Msg("Tag submission failed")
		h.errorResponse(c, http.StatusInternalServerError, "Something went wrong applying your tag. Please try again")
	}
}
