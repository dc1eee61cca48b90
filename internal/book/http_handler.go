package book

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/httpx"
)

// maxUploadMemory caps how much of a multipart body is buffered in memory;
// the rest spills to temporary files.
const maxUploadMemory = 10 << 20

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Routes registers the book endpoints on mux.
func (h *HTTPHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /books", h.List)
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("PUT /books/{id}", h.Replace)
	mux.HandleFunc("PATCH /books/{id}", h.Patch)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
}

// ListResponse is the payload of GET /books.
type ListResponse struct {
	Query   *string `json:"query"`
	Count   int     `json:"count"`
	Results []Book  `json:"results"`
	Skip    int     `json:"skip"`
	Limit   int     `json:"limit"`
}

type listParams struct {
	Q     string `form:"q" validate:"omitempty,min=3,max=100"`
	Skip  int    `form:"skip" validate:"gte=0"`
	Limit int    `form:"limit" validate:"gte=1,lte=100"`
}

type createForm struct {
	Title            string `form:"title" validate:"required,min=3,max=100"`
	Author           string `form:"author" validate:"required,min=3,max=100"`
	Publisher        string `form:"publisher" validate:"required,min=3,max=100"`
	FirstPublishYear int    `form:"first_publish_year" validate:"gte=0"`
}

type patchForm struct {
	Title            *string `form:"title" validate:"omitempty,min=3,max=100"`
	Author           *string `form:"author" validate:"omitempty,min=3,max=100"`
	Publisher        *string `form:"publisher" validate:"omitempty,min=3,max=100"`
	FirstPublishYear *int    `form:"first_publish_year" validate:"omitempty,gte=0"`
}

// List handles GET /books.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := listParams{
		Q:     query.Get("q"),
		Skip:  0,
		Limit: 10,
	}

	var details []httpx.ErrorDetail
	if v := query.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "skip", Message: "skip must be an integer"})
		} else {
			params.Skip = n
		}
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "limit", Message: "limit must be an integer"})
		} else {
			params.Limit = n
		}
	}
	details = append(details, validateStruct(params)...)
	if len(details) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid query parameters", details)
		return
	}

	books, err := h.service.List(r.Context(), Query{Q: params.Q, Skip: params.Skip, Limit: params.Limit})
	if err != nil {
		h.respondError(w, "list books", err)
		return
	}
	if books == nil {
		books = []Book{}
	}

	var echoed *string
	if params.Q != "" {
		echoed = &params.Q
	}
	httpx.JSON(w, http.StatusOK, ListResponse{
		Query:   echoed,
		Count:   len(books),
		Results: books,
		Skip:    params.Skip,
		Limit:   params.Limit,
	})
}

// Create handles POST /books.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, file, ok := h.parseCreateForm(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, "create book", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Replace handles PUT /books/{id}.
func (h *HTTPHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	in, file, ok := h.parseCreateForm(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	updated, err := h.service.Replace(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "replace book", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Patch handles PATCH /books/{id}.
func (h *HTTPHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := parseForm(r); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed form body", nil)
		return
	}

	form := patchForm{
		Title:     postFormValue(r, "title"),
		Author:    postFormValue(r, "author"),
		Publisher: postFormValue(r, "publisher"),
	}

	var details []httpx.ErrorDetail
	if raw := postFormValue(r, "first_publish_year"); raw != nil {
		year, err := strconv.Atoi(*raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "first_publish_year", Message: "first_publish_year must be an integer"})
		} else {
			form.FirstPublishYear = &year
		}
	}
	details = append(details, validateStruct(form)...)
	if len(details) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	upload, file, err := formUpload(r)
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed file upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
	}

	updated, err := h.service.Patch(r.Context(), id, PatchInput{
		Title:            form.Title,
		Author:           form.Author,
		Publisher:        form.Publisher,
		FirstPublishYear: form.FirstPublishYear,
		Image:            upload,
	})
	if err != nil {
		h.respondError(w, "patch book", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /books/{id}.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondError(w, "delete book", err)
		return
	}
	httpx.JSON(w, http.StatusOK, deleted)
}

// parseCreateForm validates the full set of scalar fields plus the
// optional image. It writes the error response itself and reports ok=false
// when the request was already answered.
func (h *HTTPHandler) parseCreateForm(w http.ResponseWriter, r *http.Request) (CreateInput, multipart.File, bool) {
	if err := parseForm(r); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed form body", nil)
		return CreateInput{}, nil, false
	}

	form := createForm{
		Title:     r.PostFormValue("title"),
		Author:    r.PostFormValue("author"),
		Publisher: r.PostFormValue("publisher"),
	}

	var details []httpx.ErrorDetail
	switch raw := postFormValue(r, "first_publish_year"); {
	case raw == nil || *raw == "":
		details = append(details, httpx.ErrorDetail{Field: "first_publish_year", Message: "first_publish_year is required"})
	default:
		year, err := strconv.Atoi(*raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "first_publish_year", Message: "first_publish_year must be an integer"})
		} else {
			form.FirstPublishYear = year
		}
	}
	details = append(details, validateStruct(form)...)
	if len(details) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", details)
		return CreateInput{}, nil, false
	}

	upload, file, err := formUpload(r)
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed file upload", nil)
		return CreateInput{}, nil, false
	}

	return CreateInput{
		Title:            form.Title,
		Author:           form.Author,
		Publisher:        form.Publisher,
		FirstPublishYear: form.FirstPublishYear,
		Image:            upload,
	}, file, true
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	// Driver and file system error text stays out of the response.
	h.logger.Error(op, zap.Error(err))
	httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return 0, false
	}
	return id, true
}

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// postFormValue distinguishes an absent field from an empty one.
func postFormValue(r *http.Request, key string) *string {
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

// formUpload extracts the optional image file from a multipart form.
func formUpload(r *http.Request) (*Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &Upload{Filename: header.Filename, Content: file}, file, nil
}
