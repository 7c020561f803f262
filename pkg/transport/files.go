package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/coverly/coverly/pkg/api"
	"github.com/coverly/coverly/pkg/auth"
	"github.com/coverly/coverly/pkg/objstore"
	"github.com/coverly/coverly/pkg/observability"
)

// handleListFiles handles GET /v1/files. The listing is scoped to the
// caller's prefix at query time, never filtered after the fact.
func (rt *Router) handleListFiles(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	infos, err := rt.objects.List(r.Context(), objstore.OwnerPrefix(id.ID))
	recordObjectOp("list", err)
	if err != nil {
		slog.Error("listing files failed", "error", err)
		WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
		return
	}

	files := make([]api.FileInfo, 0, len(infos))
	for _, info := range infos {
		files = append(files, fileInfo(info))
	}

	writeJSON(w, http.StatusOK, api.FileListResponse{Files: files})
}

// handleUploadFile handles POST /v1/files. The upload is a multipart
// form with a "file" part and an optional "category" field (resumes or
// letters, default resumes). The stored filename is the sanitized
// client name, and the extension decides the stored content type.
func (rt *Router) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteErrorResponse(w,
				api.NewInvalidRequestError("file", fmt.Sprintf("upload too large (max %d bytes)", rt.cfg.MaxUploadBytes)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		WriteAPIError(w, api.NewInvalidRequestError("file", "multipart form with a \"file\" part is required"))
		return
	}
	defer file.Close()

	category := r.FormValue("category")
	if category == "" {
		category = objstore.CategoryResumes
	}
	if category != objstore.CategoryResumes && category != objstore.CategoryLetters {
		WriteAPIError(w, api.NewInvalidRequestError("category",
			fmt.Sprintf("category must be %q or %q", objstore.CategoryResumes, objstore.CategoryLetters)))
		return
	}

	name, err := objstore.SanitizeFilename(header.Filename)
	if err != nil {
		WriteAPIError(w, api.NewInvalidRequestError("file", err.Error()))
		return
	}
	contentType, err := objstore.ContentTypeFor(name)
	if err != nil {
		WriteAPIError(w, api.NewInvalidRequestError("file", err.Error()))
		return
	}

	key := objstore.ObjectKey(id.ID, category, name)

	err = rt.objects.Put(r.Context(), key, contentType, file, header.Size)
	recordObjectOp("put", err)
	if err != nil {
		slog.Error("storing upload failed", "key", key, "error", err)
		WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
		return
	}

	writeJSON(w, http.StatusCreated, api.UploadResponse{
		Success: true,
		Message: "file uploaded",
		File: &api.FileInfo{
			Key:          key,
			Name:         name,
			Size:         header.Size,
			ContentType:  contentType,
			LastModified: time.Now().UTC(),
		},
	})
}

// handleDownloadLink handles GET /v1/files/{key...}. It answers with a
// short-lived presigned URL rather than streaming the bytes itself.
func (rt *Router) handleDownloadLink(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	key := r.PathValue("key")
	if err := auth.AuthorizeMutation(id, key); err != nil {
		WriteAPIError(w, api.NewForbiddenError("access denied"))
		return
	}

	url, err := rt.objects.PresignGet(r.Context(), key, rt.cfg.PresignTTL)
	recordObjectOp("presign", err)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			WriteAPIError(w, api.NewNotFoundError("file not found"))
			return
		}
		slog.Error("presigning download failed", "key", key, "error", err)
		WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, api.DownloadLinkResponse{
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(rt.cfg.PresignTTL).UTC(),
	})
}

// handleRenameFile handles POST /v1/files/rename. The object moves to a
// sanitized sibling key in the same directory via copy then delete; the
// extension cannot change, so the stored content type stays truthful.
func (rt *Router) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req api.RenameFileRequest
	if !rt.decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		WriteAPIError(w, api.NewInvalidRequestError("key", "key is required"))
		return
	}
	if req.NewName == "" {
		WriteAPIError(w, api.NewInvalidRequestError("new_name", "new_name is required"))
		return
	}

	if err := auth.AuthorizeMutation(id, req.Key); err != nil {
		WriteAPIError(w, api.NewForbiddenError("access denied"))
		return
	}

	name, err := objstore.SanitizeFilename(req.NewName)
	if err != nil {
		WriteAPIError(w, api.NewInvalidRequestError("new_name", err.Error()))
		return
	}
	if !strings.EqualFold(path.Ext(name), path.Ext(req.Key)) {
		WriteAPIError(w, api.NewInvalidRequestError("new_name", "renaming cannot change the file extension"))
		return
	}

	dst := path.Dir(req.Key) + "/" + name
	if dst != req.Key {
		err := rt.objects.Copy(r.Context(), req.Key, dst)
		recordObjectOp("copy", err)
		if err != nil {
			if errors.Is(err, objstore.ErrNotFound) {
				WriteAPIError(w, api.NewNotFoundError("file not found"))
				return
			}
			slog.Error("rename copy failed", "key", req.Key, "error", err)
			WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
			return
		}

		err = rt.objects.Delete(r.Context(), req.Key)
		recordObjectOp("delete", err)
		if err != nil && !errors.Is(err, objstore.ErrNotFound) {
			slog.Error("rename delete failed", "key", req.Key, "error", err)
			WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
			return
		}
	}

	writeJSON(w, http.StatusOK, api.RenameFileResponse{
		Success: true,
		Key:     dst,
		Name:    name,
	})
}

// handleDeleteFile handles DELETE /v1/files/{key...}.
func (rt *Router) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	key := r.PathValue("key")
	if err := auth.AuthorizeMutation(id, key); err != nil {
		WriteAPIError(w, api.NewForbiddenError("access denied"))
		return
	}

	err := rt.objects.Delete(r.Context(), key)
	recordObjectOp("delete", err)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			WriteAPIError(w, api.NewNotFoundError("file not found"))
			return
		}
		slog.Error("deleting file failed", "key", key, "error", err)
		WriteAPIError(w, api.NewUnavailableError("file storage unavailable"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fileInfo projects a stored object onto the wire shape.
func fileInfo(info objstore.ObjectInfo) api.FileInfo {
	return api.FileInfo{
		Key:          info.Key,
		Name:         path.Base(info.Key),
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}
}

// recordObjectOp counts one object store operation outcome.
func recordObjectOp(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.ObjectStoreOperationsTotal.WithLabelValues(op, status).Inc()
}
