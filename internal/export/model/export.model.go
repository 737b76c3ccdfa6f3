package model

const (
	// ModeImages means every slide was rendered and placed as a picture.
	ModeImages = "images"
	// ModeText means rendering failed and the PDF carries plain text pages.
	ModeText = "text"
)

// PDFFile is a finished export ready to be sent as an attachment.
type PDFFile struct {
	Filename string
	Mode     string
	Data     []byte
}

type SlideImage struct {
	SlideNumber int    `json:"slide_number"`
	DataURL     string `json:"data_url"`
}

type ImagesResult struct {
	Images []SlideImage `json:"images"`
}
