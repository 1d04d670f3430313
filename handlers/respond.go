package handlers

import (
	"errors"
	"net/http"

	appointmentRepo "medibook/database/repository/appointment"
	articleRepo "medibook/database/repository/article"
	doctorRepo "medibook/database/repository/doctor"
	userRepo "medibook/database/repository/user"
	"medibook/services/booking"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// notFound reports whether err is any repository's not-found sentinel.
func notFound(err error) bool {
	return errors.Is(err, doctorRepo.ErrNotFound) ||
		errors.Is(err, appointmentRepo.ErrNotFound) ||
		errors.Is(err, userRepo.ErrNotFound) ||
		errors.Is(err, articleRepo.ErrNotFound)
}

// respondOK writes the success envelope with the given payload fields.
func respondOK(c *gin.Context, data gin.H) {
	body := gin.H{"success": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// respondError maps a service error onto the failure envelope and the
// matching HTTP status. Unrecognized errors are surfaced generically.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong, please try again"

	switch booking.CodeOf(err) {
	case booking.CodeValidation:
		status, message = http.StatusBadRequest, err.Error()
	case booking.CodeAuthorization:
		status, message = http.StatusForbidden, err.Error()
	case booking.CodeSlotConflict:
		// Expected under contention: the client should refresh availability
		// and pick another time.
		status, message = http.StatusConflict, err.Error()
	case booking.CodeNotFound:
		status, message = http.StatusNotFound, err.Error()
	case booking.CodeInvalidTransition:
		status, message = http.StatusConflict, err.Error()
	case booking.CodeUpstreamPayment:
		status, message = http.StatusBadGateway, err.Error()
	default:
		if notFound(err) {
			status, message = http.StatusNotFound, err.Error()
			break
		}
		utils.GetLogger().Error("unhandled service error", zap.Error(err))
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondBadRequest reports a malformed request payload.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// respondUnauthorized reports failed credential checks.
func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// respondUpstream reports a failed call to an external collaborator.
func respondUpstream(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": message})
}
