package model

import projectmodel "lexivo/internal/project/model"

// MaxCheckChars bounds the text sent for grammar checking.
const MaxCheckChars = 10000

const (
	DefaultSlideCount = 5
	MaxSlideCount     = 10
)

type GrammarCheckRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// Suggestion is one proposed edit. Start and End are rune offsets into the
// checked text.
type Suggestion struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	Original    string `json:"original"`
	Suggestion  string `json:"suggestion"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Explanation string `json:"explanation"`
}

type GrammarResult struct {
	Suggestions []Suggestion `json:"suggestions"`
	Score       int          `json:"score"`
}

type VariationsRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type Variation struct {
	ID        string `json:"id"`
	Tone      string `json:"tone"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
}

type VariationsResult struct {
	Variations []Variation `json:"variations"`
}

type GenerateSlidesRequest struct {
	Text       string  `json:"text" validate:"max=100000"`
	DocumentID *string `json:"document_id" validate:"omitempty,uuid"`
	SlideCount *int    `json:"slide_count" validate:"omitempty,gte=1,lte=10"`
	Tone       string  `json:"tone" validate:"omitempty,oneof=professional casual educational inspirational humorous"`
}

type GenerateSlidesResult struct {
	Slides []projectmodel.Slide `json:"slides"`
}
