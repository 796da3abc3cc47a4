package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askeland/bildereise/config"
	"github.com/askeland/bildereise/middleware"
	"github.com/askeland/bildereise/models"
	"github.com/askeland/bildereise/services/imageproc"
	"github.com/askeland/bildereise/services/promptgen"
	"github.com/askeland/bildereise/services/vision"
	"github.com/askeland/bildereise/storage"
	"github.com/askeland/bildereise/utils"
)

// GalleryController serves the gallery listing endpoints and drives the
// upload pipeline: validate, normalize, compose, analyze, persist. Any
// failing step aborts the rest; no record is created and no files from
// the failed upload survive.
type GalleryController struct {
	store    storage.Store
	analyzer vision.Analyzer

	galleryDir string
	thumbsDir  string
}

// NewGalleryController creates a GalleryController and ensures the
// gallery and thumbnail directories exist under uploadsDir.
func NewGalleryController(store storage.Store, analyzer vision.Analyzer, uploadsDir string) (*GalleryController, error) {
	galleryDir := filepath.Join(uploadsDir, "gallery")
	thumbsDir := filepath.Join(uploadsDir, "thumbnails")
	for _, dir := range []string{uploadsDir, galleryDir, thumbsDir} {
		if err := ensureDir(dir); err != nil {
			return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
		}
	}
	return &GalleryController{
		store:      store,
		analyzer:   analyzer,
		galleryDir: galleryDir,
		thumbsDir:  thumbsDir,
	}, nil
}

// Upload handles POST /api/gallery/upload.
func (g *GalleryController) Upload(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Ikke autentisert")
		return
	}

	creativity, err := parseLevelValue(ctx.PostForm("creativityValue"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Kreativitetsverdien må være mellom 0 og 100")
		return
	}
	excitement, err := parseLevelValue(ctx.PostForm("excitementValue"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Spenningsverdien må være mellom 0 og 100")
		return
	}
	jinnRaw := ctx.PostForm("jinnification")
	if jinnRaw != "true" && jinnRaw != "false" {
		utils.Error(ctx, http.StatusBadRequest, "Jinnification må være true eller false")
		return
	}
	jinnification := jinnRaw == "true"

	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Ingen fil ble lastet opp")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxBytes := int64(cfg.GalleryMaxSizeMB) << 20

	originalName, err := saveUploadedImage(file, header, g.galleryDir, maxBytes, userID)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidFileType):
			utils.Error(ctx, http.StatusBadRequest, "Kun bildefiler er tillatt (JPG, PNG, GIF)")
		case errors.Is(err, errFileTooLarge):
			utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("Bildet er for stort (maks %d MB)", cfg.GalleryMaxSizeMB))
		default:
			utils.Sugar.Errorf("gallery upload save failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, "Kunne ikke lagre filen")
		}
		return
	}

	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)
	resizedName := base + "-resized" + ext
	thumbName := base + "-thumb" + ext

	originalPath := filepath.Join(g.galleryDir, originalName)
	resizedPath := filepath.Join(g.galleryDir, resizedName)
	thumbPath := filepath.Join(g.thumbsDir, thumbName)

	_, err = imageproc.Normalize(originalPath, resizedPath, thumbPath, imageproc.Options{
		MaxDimension:  cfg.MaxImageDimension,
		ThumbnailSize: cfg.ThumbnailSize,
	})
	if err != nil {
		// The raw upload must not outlive a failed pipeline.
		_ = os.Remove(originalPath)
		if errors.Is(err, imageproc.ErrUnreadableImage) {
			utils.Error(ctx, http.StatusBadRequest, "Kunne ikke lese bildets dimensjoner")
			return
		}
		utils.Sugar.Errorf("gallery upload normalize failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Kunne ikke endre størrelse på bildet")
		return
	}

	systemPrompt, userPrompt := promptgen.Compose(creativity, excitement, jinnification)

	workingBytes, err := os.ReadFile(resizedPath)
	if err != nil {
		g.removeArtifacts(resizedPath, thumbPath)
		utils.Sugar.Errorf("gallery upload read working image failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Kunne ikke lese bildet")
		return
	}

	// The analysis is bounded by its own timeout and deliberately not tied
	// to the request context: a client that disconnects mid-flight still
	// gets a finished pipeline, not orphaned files.
	description, err := g.analyzer.Analyze(context.Background(), workingBytes, mediaTypeForExt(ext), systemPrompt, userPrompt)
	if err != nil {
		g.removeArtifacts(resizedPath, thumbPath)
		utils.Sugar.Errorf("gallery upload analysis failed: %v", err)
		utils.Error(ctx, http.StatusBadGateway, "Kunne ikke analysere bildet")
		return
	}

	item := models.Gallery{
		UserID:          userID,
		Image:           "/uploads/gallery/" + resizedName,
		Thumbnail:       "/uploads/thumbnails/" + thumbName,
		CreativityValue: creativity,
		ExcitementValue: excitement,
		Jinnification:   jinnification,
		Description:     description,
	}
	if err := g.store.CreateGalleryItem(&item); err != nil {
		g.removeArtifacts(resizedPath, thumbPath)
		utils.Sugar.Errorf("gallery upload persist failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Kunne ikke lagre galleribildet")
		return
	}

	utils.JSON(ctx, http.StatusCreated, item)
}

// List handles GET /api/gallery with an optional userId filter.
func (g *GalleryController) List(ctx *gin.Context) {
	var userID uint
	if raw := strings.TrimSpace(ctx.Query("userId")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, "Ugyldig bruker-id")
			return
		}
		userID = uint(parsed)
	}

	items, err := g.store.GetGalleryItems(userID)
	if err != nil {
		utils.Sugar.Errorf("gallery list failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Kunne ikke hente galleriet")
		return
	}
	utils.JSON(ctx, http.StatusOK, items)
}

// Get handles GET /api/gallery/:id.
func (g *GalleryController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, "Galleribildet ble ikke funnet")
		return
	}

	item, err := g.store.GetGalleryItem(uint(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Galleribildet ble ikke funnet")
			return
		}
		utils.Sugar.Errorf("gallery get failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "Kunne ikke hente galleribildet")
		return
	}
	utils.JSON(ctx, http.StatusOK, item)
}

func (g *GalleryController) removeArtifacts(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			utils.Sugar.Warnf("failed to remove upload artifact %s: %v", p, err)
		}
	}
}

func parseLevelValue(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return v, nil
}
