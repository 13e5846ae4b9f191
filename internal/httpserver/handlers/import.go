package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/mw"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/respond"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/sources/homepage"
	redisstore "github.com/MrSnakeDoc/adlinkton/internal/store/redis"
	"github.com/MrSnakeDoc/adlinkton/internal/utils"
)

// ImportTypeBookmarks is the only import type served by /api/import/{type}.
const ImportTypeBookmarks = "bookmarks"

// multipartMemory is kept in memory before parts spill to disk.
const multipartMemory = 8 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type importResponse struct {
	Message string             `json:"message"`
	Stats   domain.ImportStats `json:"stats"`
}

type parseFunc func(io.Reader) ([]bookmark.Node, error)

// parserFor picks the parser of an uploaded file: Homepage YAML by
// extension, Netscape HTML by extension or content type.
func parserFor(header *multipart.FileHeader) (parseFunc, bool) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".yaml", ".yml":
		return homepage.ParseBookmarks, true
	case ".html", ".htm":
		return bookmark.ParseNetscape, true
	}

	if strings.HasPrefix(strings.ToLower(header.Header.Get("Content-Type")), "text/html") {
		return bookmark.ParseNetscape, true
	}
	return nil, false
}

// Import handles a bookmark file upload (multipart field "file") for the
// authenticated user. The whole import is atomic.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		if chi.URLParam(r, "type") != ImportTypeBookmarks {
			respond.Error(w, http.StatusBadRequest, "Unknown import type")
			return
		}

		if d.MaxUploadSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadSize)
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Error(w, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			respond.Error(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer utils.MustClose(file, d.Logger, "upload")

		parse, ok := parserFor(header)
		if !ok {
			respond.Error(w, http.StatusBadRequest, "Invalid file type. Expected HTML file.")
			return
		}

		release, err := d.ImportLocker.AcquireImportLock(r.Context(), userID, d.ImportLockTTL)
		if err != nil {
			if errors.Is(err, redisstore.ErrImportInProgress) {
				respond.Error(w, http.StatusConflict, "Import already in progress")
				return
			}
			d.Logger.Error("failed to acquire import lock",
				logger.Int64("user_id", userID),
				logger.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Import failed: could not acquire import lock")
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(r.Context())); err != nil {
				d.Logger.Warn("failed to release import lock",
					logger.Int64("user_id", userID),
					logger.Error(err))
			}
		}()

		stats, err := runImport(r.Context(), d, userID, file, parse)
		if err != nil {
			d.Logger.Warn("bookmark import rejected",
				logger.Int64("user_id", userID),
				logger.String("file", header.Filename),
				logger.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Import failed: "+err.Error())
			return
		}

		respond.JSON(w, http.StatusOK, importResponse{
			Message: "Bookmarks imported successfully",
			Stats:   stats,
		})
	}
}

func runImport(ctx context.Context, d deps.Deps, userID int64, file io.Reader, parse parseFunc) (domain.ImportStats, error) {
	nodes, err := parse(file)
	if err != nil {
		return domain.ImportStats{}, err
	}

	if d.ImportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.ImportTimeout)
		defer cancel()
	}

	return d.Importer.Import(ctx, userID, nodes)
}
