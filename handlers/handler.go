package handlers

import (
	"errors"
	"net/http"

	"campus-popcorn-api/blob"
	"campus-popcorn-api/ingest"
	"campus-popcorn-api/settlement"
	"campus-popcorn-api/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler carries the injected services behind the HTTP surface.
type Handler struct {
	svc    *settlement.Service
	ingest *ingest.Service
	store  *store.Store
	blobs  *blob.Local
	log    zerolog.Logger
}

func New(svc *settlement.Service, ing *ingest.Service, st *store.Store, blobs *blob.Local, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, ingest: ing, store: st, blobs: blobs, log: log}
}

// respondError maps the settlement failure taxonomy to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, settlement.ErrInvalidInput), errors.Is(err, settlement.ErrInvalidEvidence):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, settlement.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, settlement.ErrVerificationFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Payment verification failed. No matching transaction was found.",
		})
	case errors.Is(err, settlement.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, settlement.ErrStorage):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Storage failure, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
