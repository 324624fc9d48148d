package server

import (
	"net/http"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/auth"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// AuthDeps holds the bootstrap credential hashes HandleIssueToken checks an
// api_key against. Either field may be empty, disabling that role entirely.
type AuthDeps struct {
	JWTMgr         *auth.JWTManager
	AdminKeyHash   string
	ReadOnlyHash   string
}

// HandleIssueToken handles POST /api/auth/token: it exchanges a bootstrap
// API key for a short-lived JWT carrying the matching role (spec §1's
// "caller identity + role tag" framing, SPEC_FULL.md §2.2). The admin hash
// is checked before the read-only hash so a key valid under both is minted
// with the higher-privilege role.
func (h *Handlers) HandleIssueToken(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.TokenRequest
		if err := decodeJSON(w, r, h.maxRequestBodyBytes, &req); err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, "invalid request body")
			return
		}
		if req.APIKey == "" {
			writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, "api_key is required")
			return
		}
		if deps.JWTMgr == nil {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "token issuance is disabled")
			return
		}

		role, ok := matchRole(req.APIKey, deps)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid api key")
			return
		}

		token, exp, err := deps.JWTMgr.IssueToken(role)
		if err != nil {
			h.writeInternalError(w, r, "failed to issue token", err)
			return
		}
		writeJSON(w, r, http.StatusOK, model.TokenResponse{Token: token, Role: role, ExpiresAt: exp})
	}
}

// matchRole checks apiKey against the admin hash first, then read-only, so a
// caller's token always carries its highest matching privilege. A missing
// hash still runs DummyVerify so response timing doesn't leak which roles
// are configured.
func matchRole(apiKey string, deps AuthDeps) (model.Role, bool) {
	if deps.AdminKeyHash != "" {
		if ok, err := auth.VerifyAPIKey(apiKey, deps.AdminKeyHash); err == nil && ok {
			return model.RoleAdmin, true
		}
	} else {
		auth.DummyVerify()
	}
	if deps.ReadOnlyHash != "" {
		if ok, err := auth.VerifyAPIKey(apiKey, deps.ReadOnlyHash); err == nil && ok {
			return model.RoleReadOnly, true
		}
	} else {
		auth.DummyVerify()
	}
	return "", false
}
