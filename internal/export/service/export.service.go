package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"lexivo/internal/export/model"
	projectmodel "lexivo/internal/project/model"
	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
)

// pageSize is the square PDF page edge in points; slide images are scaled onto it.
const pageSize = 540.0

// textFont is the UTF-8 family registered for the text-only PDF.
const textFont = "Go"

var exports = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lexivo_exports_total",
	Help: "Carousel exports by format and mode.",
}, []string{"format", "mode"})

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// ProjectSource loads a project with its ordered slides for the owner.
type ProjectSource interface {
	GetProject(ctx context.Context, projectID, userID string) (*projectmodel.ProjectDetail, error)
}

type ExportService struct {
	Projects ProjectSource
	Renderer Renderer
}

func NewExportService(projects ProjectSource, renderer Renderer) *ExportService {
	return &ExportService{Projects: projects, Renderer: renderer}
}

func (s *ExportService) load(ctx context.Context, projectID, userID string) (*projectmodel.ProjectDetail, error) {
	detail, err := s.Projects.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if len(detail.Slides) == 0 {
		return nil, apperr.Validation("Project has no slides to export")
	}
	return detail, nil
}

func (s *ExportService) renderAll(detail *projectmodel.ProjectDetail) ([][]byte, error) {
	images := make([][]byte, 0, len(detail.Slides))
	for i, slide := range detail.Slides {
		png, err := s.Renderer.Render(slide, detail.Title, i+1, len(detail.Slides))
		if err != nil {
			return nil, fmt.Errorf("render slide %d: %w", i+1, err)
		}
		images = append(images, png)
	}
	return images, nil
}

// PDF renders every slide to an image and places one per square page. If any
// slide fails to render, the whole document falls back to plain text pages.
func (s *ExportService) PDF(ctx context.Context, projectID, userID string) (*model.PDFFile, error) {
	detail, err := s.load(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	file := &model.PDFFile{Filename: Filename(detail.Title), Mode: model.ModeImages}

	images, err := s.renderAll(detail)
	if err == nil {
		file.Data, err = imagePDF(detail.Title, images)
	}
	if err != nil {
		logger.Sugar.Warnf("Image export of project %s failed, falling back to text: %v", detail.ID, err)
		file.Mode = model.ModeText
		if file.Data, err = textPDF(detail); err != nil {
			return nil, err
		}
	}
	exports.WithLabelValues("pdf", file.Mode).Inc()
	return file, nil
}

// Images returns every slide as a PNG data URL. There is no fallback here.
func (s *ExportService) Images(ctx context.Context, projectID, userID string) (*model.ImagesResult, error) {
	detail, err := s.load(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	images, err := s.renderAll(detail)
	if err != nil {
		return nil, err
	}
	result := &model.ImagesResult{Images: make([]model.SlideImage, 0, len(images))}
	for i, png := range images {
		result.Images = append(result.Images, model.SlideImage{
			SlideNumber: detail.Slides[i].SlideNumber,
			DataURL:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		})
	}
	exports.WithLabelValues("images", model.ModeImages).Inc()
	return result, nil
}

func imagePDF(title string, images [][]byte) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pageSize, Ht: pageSize},
	})
	pdf.SetTitle(title, true)
	pdf.SetCreator("LexivoAI", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, png := range images {
		name := fmt.Sprintf("slide-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, pageSize, pageSize, false, opts, 0, "")
	}
	return output(pdf)
}

func textPDF(detail *projectmodel.ProjectDetail) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(detail.Title, true)
	pdf.SetCreator("LexivoAI", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddUTF8FontFromBytes(textFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(textFont, "B", gobold.TTF)

	total := len(detail.Slides)
	for i, slide := range detail.Slides {
		pdf.AddPage()
		pdf.SetFont(textFont, "", 10)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s  -  Slide %d / %d", detail.Title, i+1, total), "", 1, "L", false, 0, "")
		pdf.Ln(6)

		pdf.SetTextColor(17, 24, 39)
		if title := strings.TrimSpace(slide.Title); title != "" {
			pdf.SetFont(textFont, "B", 20)
			pdf.MultiCell(0, 9, title, "", "L", false)
			pdf.Ln(4)
		}
		pdf.SetFont(textFont, "", 12)
		pdf.MultiCell(0, 6, slide.Content, "", "L", false)
	}
	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename turns a project title into a safe attachment name.
func Filename(title string) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "carousel"
	}
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	return slug + ".pdf"
}
