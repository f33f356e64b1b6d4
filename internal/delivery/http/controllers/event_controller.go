package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	h "clubevents/internal/delivery/http/helpers"
	"clubevents/internal/delivery/http/middleware"
	"clubevents/internal/domain"
)

// multipartMemory is how much of a publish form is held in memory before spilling to disk.
const multipartMemory = 32 << 20

// CachePolicy sets the shared-cache lifetime of public responses.
type CachePolicy struct {
	SMaxAge              time.Duration
	StaleWhileRevalidate time.Duration
}

func (p CachePolicy) header() string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int(p.SMaxAge.Seconds()), int(p.StaleWhileRevalidate.Seconds()))
}

// DeleteEventResponse is the response body for DELETE /api/events/{slug}.
type DeleteEventResponse struct {
	DeletedImages int `json:"deletedImages"`
}

type EventController struct {
	Logger        *slog.Logger
	Service       domain.EventService
	Cache         domain.PageCache
	Policy        CachePolicy
	MaxImageBytes int64
	MaxImageCount int
}

func NewEventController(logger *slog.Logger, svc domain.EventService, cache domain.PageCache, policy CachePolicy, maxImageCount int, maxImageBytes int64) *EventController {
	return &EventController{
		Logger:        logger,
		Service:       svc,
		Cache:         cache,
		Policy:        policy,
		MaxImageBytes: maxImageBytes,
		MaxImageCount: maxImageCount,
	}
}

// writePublic writes data with the public cache policy and stores the body in the page cache
// unless an invalidation happened after gen was read.
func (c *EventController) writePublic(w http.ResponseWriter, r *http.Request, path string, gen uint64, data any) {
	body, err := h.EncodeSuccess(data)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if c.Cache != nil {
		c.Cache.Set(path, body, gen)
	}
	w.Header().Set("Cache-Control", c.Policy.header())
	w.Header().Set("X-Cache", "MISS")
	h.WriteJSONBytes(w, http.StatusOK, body)
}

func (c *EventController) cacheGeneration() uint64 {
	if c.Cache == nil {
		return 0
	}
	return c.Cache.Generation()
}

func (c *EventController) serveCached(w http.ResponseWriter, path string) bool {
	if c.Cache == nil {
		return false
	}
	body, ok := c.Cache.Get(path)
	if !ok {
		return false
	}
	w.Header().Set("Cache-Control", c.Policy.header())
	w.Header().Set("X-Cache", "HIT")
	h.WriteJSONBytes(w, http.StatusOK, body)
	return true
}

func wantsHidden(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("includeHidden")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// ListEvents godoc
// @Summary List events
// @Description Public callers get non-hidden events with a shared-cache policy. With includeHidden=1 and a valid admin session every event is returned and the response is not cached; without a valid session the public list is returned.
// @Tags events
// @Produce json
// @Param includeHidden query string false "1 to include hidden events (admin only)"
// @Success 200 {object} helpers.APIResponse "data contains the events, newest first"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	includeHidden := wantsHidden(r)
	gen := c.cacheGeneration()
	if !includeHidden && c.serveCached(w, domain.EventsListPath) {
		return
	}
	events, privileged, err := c.Service.List(r.Context(), middleware.SessionToken(r), includeHidden)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if privileged {
		w.Header().Set("Cache-Control", "no-store")
		h.WriteJSONSuccess(w, http.StatusOK, events)
		return
	}
	c.writePublic(w, r, domain.EventsListPath, gen, events)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns one event by slug (case and whitespace insensitive). Hidden events are only returned to an admin session.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(strings.TrimSpace(r.PathValue("slug")))
	if slug == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing slug")
		return
	}
	token := middleware.SessionToken(r)
	path := domain.EventPath(slug)
	gen := c.cacheGeneration()
	if token == "" && c.serveCached(w, path) {
		return
	}
	event, privileged, err := c.Service.Get(r.Context(), token, slug)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if privileged {
		w.Header().Set("Cache-Control", "no-store")
		h.WriteJSONSuccess(w, http.StatusOK, event)
		return
	}
	c.writePublic(w, r, path, gen, event)
}

// CheckSlug godoc
// @Summary Suggest a unique slug
// @Description Normalizes base and returns it when free, otherwise base-N past the highest numeric suffix in use.
// @Tags events
// @Produce json
// @Param base query string true "Desired slug or title"
// @Success 200 {object} helpers.APIResponse "data contains base, uniqueSlug and isTaken"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/check-slug [get]
func (c *EventController) CheckSlug(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	suggestion, err := c.Service.CheckSlug(r.Context(), r.URL.Query().Get("base"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, suggestion)
}

// PublishEvent godoc
// @Summary Publish an event
// @Description Multipart form with the event fields, image parts image1..imageN and the declared imageCount. Images over the size limit or past the image limit are skipped and reported; a failed upload drops only that image.
// @Tags events
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param slug formData string true "Desired slug"
// @Param startDate formData string true "Start date (YYYY-MM-DD)"
// @Param endDate formData string false "End date (YYYY-MM-DD)"
// @Param startTime formData string false "Start time"
// @Param endTime formData string false "End time"
// @Param location formData string true "Location"
// @Param bodyMarkdown formData string false "Markdown body"
// @Param signupTitle formData string false "Label for the signup link"
// @Param signupUrl formData string false "Signup link"
// @Param signupEmbedUrl formData string false "Embeddable signup form"
// @Param hasGoogleForm formData boolean false "Signup link is a Google Form"
// @Param imageCount formData int false "Number of image parts"
// @Param image1 formData file false "First image, shown as the header"
// @Success 201 {object} helpers.APIResponse "data contains slug, imageCount and skipped"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) PublishEvent(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.SessionTokenFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, h.MsgLogInAgain)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.maxPublishBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "request too large")
			return
		}
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	images, err := c.readImages(r.MultipartForm)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		return
	}
	declared, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("imageCount")))

	in := domain.PublishInput{
		Fields: domain.EventFields{
			Title:          r.FormValue("title"),
			Slug:           r.FormValue("slug"),
			StartDate:      r.FormValue("startDate"),
			EndDate:        r.FormValue("endDate"),
			StartTime:      r.FormValue("startTime"),
			EndTime:        r.FormValue("endTime"),
			Location:       r.FormValue("location"),
			BodyMarkdown:   r.FormValue("bodyMarkdown"),
			SignupTitle:    r.FormValue("signupTitle"),
			SignupURL:      r.FormValue("signupUrl"),
			SignupEmbedURL: r.FormValue("signupEmbedUrl"),
			HasGoogleForm:  formBool(r.FormValue("hasGoogleForm")),
		},
		Images:             images,
		DeclaredImageCount: declared,
	}

	result, err := c.Service.Publish(r.Context(), token, in)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.WriteJSONSuccess(w, http.StatusCreated, result)
}

// maxPublishBytes leaves room for every allowed image at twice the per-image limit plus the text fields,
// so oversized images reach the publisher and are reported as skipped.
func (c *EventController) maxPublishBytes() int64 {
	return int64(c.MaxImageCount+1)*c.MaxImageBytes*2 + 1<<20
}

// readImages collects the imageN parts in position order. Reads stop one byte past the size
// limit; the publisher treats such files as too large.
func (c *EventController) readImages(form *multipart.Form) ([]domain.ImageFile, error) {
	var images []domain.ImageFile
	for field, headers := range form.File {
		rest, ok := strings.CutPrefix(field, "image")
		if !ok || len(headers) == 0 {
			continue
		}
		pos, err := strconv.Atoi(rest)
		if err != nil || pos < 1 {
			continue
		}
		fh := headers[0]
		data, err := c.readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s", field)
		}
		images = append(images, domain.ImageFile{
			Position:    pos,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	slices.SortFunc(images, func(a, b domain.ImageFile) int { return a.Position - b.Position })
	return images, nil
}

func (c *EventController) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, c.MaxImageBytes+1))
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// UpdateEvent godoc
// @Summary Edit an event
// @Description Partial update; omitted fields are unchanged and blank optional fields are cleared.
// @Tags events
// @Accept json
// @Produce json
// @Param slug path string true "Event slug"
// @Param body body domain.EventPatch true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.SessionTokenFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, h.MsgLogInAgain)
		return
	}
	var patch domain.EventPatch
	if !h.DecodeAndValidate(w, r, &patch) {
		return
	}
	event, err := c.Service.Update(r.Context(), token, r.PathValue("slug"), patch)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event row, then makes a best-effort attempt to delete its images.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse "data contains deletedImages"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{slug} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.SessionTokenFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, h.MsgLogInAgain)
		return
	}
	n, err := c.Service.Delete(r.Context(), token, r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{DeletedImages: n})
}
