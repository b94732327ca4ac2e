package corehandler

import (
	"net/http"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
)

// StatusForKind maps a coreerr.Kind to the HTTP status pkg/server
// responds with. This is the only place in the module that makes that
// mapping, per SPEC_FULL.md §4.8.
func StatusForKind(kind string) int {
	switch coreerr.Kind(kind) {
	case coreerr.KindValidation:
		return http.StatusBadRequest
	case coreerr.KindSkillNotFound:
		return http.StatusNotFound
	case coreerr.KindManagerClosed:
		return http.StatusServiceUnavailable
	case coreerr.KindTimeout:
		return http.StatusGatewayTimeout
	case coreerr.KindPlanning, coreerr.KindSynthesis, coreerr.KindLLM:
		return http.StatusBadGateway
	case coreerr.KindExecution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
