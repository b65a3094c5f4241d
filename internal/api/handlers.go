package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/packsmith/packsmith/internal/core"
	"github.com/packsmith/packsmith/internal/runner"
	"github.com/packsmith/packsmith/internal/store"
	"github.com/packsmith/packsmith/internal/validate"
)

type handlers struct {
	deps *Dependencies
}

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type settings struct {
	DownloadServerBase string `json:"download_server_base"`
	ResourcesURLBase   string `json:"resources_url_base"`
	VersionManifestURL string `json:"version_manifest_url"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.Token != h.deps.AdminToken {
		h.deps.Logger.Warn("login failed: invalid admin token")
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	token, err := h.deps.Auth.CreateAccessToken()
	if err != nil {
		h.deps.Logger.Error("failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *handlers) authCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	spec, err := h.deps.Store.Get()
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, specToSettings(spec))
}

func (h *handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var body settings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	spec, err := h.deps.Store.Update(func(spec *store.BuildSpec) error {
		spec.DownloadServerBase = body.DownloadServerBase
		spec.ResourcesURLBase = body.ResourcesURLBase
		spec.VersionManifestURL = body.VersionManifestURL
		return nil
	})
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, specToSettings(spec))
}

func (h *handlers) listModpacks(w http.ResponseWriter, r *http.Request) {
	spec, err := h.deps.Store.Get()
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec.Versions)
}

func (h *handlers) createModpack(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}
	if err := h.deps.Validator.ValidateEntry(r.Context(), &entry); err != nil {
		h.writeMappedError(w, err)
		return
	}
	if _, err := h.deps.Store.AddVersion(entry); err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *handlers) getModpack(w http.ResponseWriter, r *http.Request) {
	spec, err := h.deps.Store.Get()
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	entry := spec.FindVersion(chi.URLParam(r, "name"))
	if entry == nil {
		writeError(w, http.StatusNotFound, "modpack not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handlers) updateModpack(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}
	if err := h.deps.Validator.ValidateEntry(r.Context(), &entry); err != nil {
		h.writeMappedError(w, err)
		return
	}
	if _, err := h.deps.Store.UpdateVersion(chi.URLParam(r, "name"), entry); err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handlers) deleteModpack(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Store.DeleteVersion(chi.URLParam(r, "name")); err != nil {
		h.writeMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listVanillaVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.deps.Versions.VanillaVersions(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *handlers) listLoaders(w http.ResponseWriter, r *http.Request) {
	families, err := h.deps.Versions.LoaderFamilies(r.Context(), chi.URLParam(r, "version"))
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, families)
}

func (h *handlers) listLoaderVersions(w http.ResponseWriter, r *http.Request) {
	family, ok := core.ParseFamily(chi.URLParam(r, "loader"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown loader")
		return
	}
	releases, err := h.deps.Versions.LoaderReleases(r.Context(), chi.URLParam(r, "version"), family)
	if err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, releases)
}

func (h *handlers) startBuild(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Builds.Submit(r.Context()); err != nil {
		h.writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{Status: "started"})
}

func (h *handlers) buildStatus(w http.ResponseWriter, r *http.Request) {
	busy, message := h.deps.Builds.Status()
	status := "idle"
	if busy {
		status = "running"
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status, Message: message})
}

func (h *handlers) decodeEntry(w http.ResponseWriter, r *http.Request) (store.VersionEntry, bool) {
	var entry store.VersionEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return entry, false
	}
	return entry, true
}

func specToSettings(spec *store.BuildSpec) settings {
	return settings{
		DownloadServerBase: spec.DownloadServerBase,
		ResourcesURLBase:   spec.ResourcesURLBase,
		VersionManifestURL: spec.VersionManifestURL,
	}
}

// writeMappedError translates the service error taxonomy onto HTTP codes:
// malformed spec 422, upstream unavailable 503, busy 409, missing 404.
func (h *handlers) writeMappedError(w http.ResponseWriter, err error) {
	var fieldErr *validate.FieldError
	var unavailable *core.UnavailableError

	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusUnprocessableEntity, fieldErr.Error())
	case errors.As(err, &unavailable):
		writeError(w, http.StatusServiceUnavailable, unavailable.Error())
	case errors.Is(err, runner.ErrBuildInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEntryExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.deps.Logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
