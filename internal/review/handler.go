package review

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/shared/metrics"
	"resume-reviewer/internal/shared/server/middleware"
	"resume-reviewer/internal/shared/server/respond"
	"resume-reviewer/internal/shared/util"
)

// FormField is the multipart field carrying the resume.
const FormField = "resume"

// multipartSlack covers the multipart envelope around the file itself.
const multipartSlack = 64 << 10

const (
	msgNoFile        = "No file uploaded"
	msgNotPDF        = "Only PDF files are allowed"
	msgNoText        = "PDF has no readable text"
	msgProcessFailed = "Resume processing failed"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the upload form and upload endpoint.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.form)
	r.GET("/upload", h.uploadInfo)
	r.POST("/upload", h.upload)
}

// BodyLimit is the request body cap enforced before multipart parsing.
func (h *Handler) BodyLimit() int64 {
	return h.Svc.Limits.MaxUploadBytes + multipartSlack
}

func (h *Handler) form(c *gin.Context) {
	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     "form.html",
		Data: gin.H{
			"Field": FormField,
			"MaxMB": h.Svc.Limits.MaxUploadBytes >> 20,
		},
	})
}

func (h *Handler) uploadInfo(c *gin.Context) {
	c.String(http.StatusOK, "Use the homepage upload form.")
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.BodyLimit())

	up, err := h.readUpload(c)
	if c.Request.MultipartForm != nil {
		defer c.Request.MultipartForm.RemoveAll()
	}
	if err != nil {
		metrics.IncReviewRejected()
		h.fail(c, err)
		return
	}
	c.Set("fileName", up.FileName)
	c.Set("fileSize", up.Size)

	ctx := llm.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Review(ctx, up)
	if res.ResumeChars > 0 {
		c.Set("resumeChars", res.ResumeChars)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set("outcome", "completed")
	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     "result.html",
		Data: gin.H{
			"Analysis":  res.Analysis,
			"Truncated": res.Truncated,
			"MaxChars":  h.Svc.Limits.MaxResumeChars,
		},
	})
}

func (h *Handler) readUpload(c *gin.Context) (Upload, error) {
	fileHeader, err := c.FormFile(FormField)
	if err != nil {
		if isBodyTooLarge(err) {
			return Upload{}, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
		}
		return Upload{}, fmt.Errorf("%w: %v", ErrNoFileProvided, err)
	}

	up := Upload{
		FileName:    util.SanitizeFileName(fileHeader.Filename, "resume.pdf"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}
	if err := h.Svc.ValidateDeclared(up); err != nil {
		return up, err
	}

	data, err := readAll(fileHeader, h.Svc.Limits.MaxUploadBytes)
	if err != nil {
		return up, err
	}
	up.Data = data
	return up, nil
}

func readAll(fileHeader *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrNoFileProvided, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrNoFileProvided, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPayloadTooLarge, limit)
	}
	return data, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		c.Set("outcome", "too_large")
		respond.Text(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge,
			fmt.Sprintf("File exceeds the %d MB limit", h.Svc.Limits.MaxUploadBytes>>20))
	case errors.Is(err, ErrNoFileProvided):
		c.Set("outcome", "no_file")
		respond.Text(c, http.StatusBadRequest, ErrorCodeValidation, msgNoFile)
	case errors.Is(err, ErrUnsupportedMediaType):
		c.Set("outcome", "not_pdf")
		respond.Text(c, http.StatusBadRequest, ErrorCodeValidation, msgNotPDF)
	case errors.Is(err, ErrUnreadableDocument):
		c.Set("outcome", "no_text")
		respond.Text(c, http.StatusBadRequest, ErrorCodeValidation, msgNoText)
	case errors.Is(err, ErrExtractionFailed):
		c.Set("outcome", "extraction_failed")
		respond.Text(c, http.StatusInternalServerError, ErrorCodeExtraction, msgProcessFailed+": the PDF could not be read")
	default:
		c.Set("outcome", "upstream_failed")
		respond.Text(c, http.StatusInternalServerError, ErrorCodeUpstream, msgProcessFailed+": the analysis service is unavailable")
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
