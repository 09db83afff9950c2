package handlers

import (
	"net/http"

	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/appealdesk/appealdesk/internal/pkg/utils"
)

// writeServiceError maps any error coming out of the service layer onto the
// response envelope, defaulting to a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := errors.As(err); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal("Internal server error", err))
}
