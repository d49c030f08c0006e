package gemini

import (
	"errors"
	"fmt"
)

var ErrNoCandidates = errors.New("no candidate in response")

type Content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64 encoded bytes next to their MIME type.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type Request struct {
	Contents         []*Content        `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Response struct {
	Candidates []*Candidate `json:"candidates"`
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// Text returns the text of the first part of the first candidate.
func (r *Response) Text() (string, error) {
	if r == nil || len(r.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	c := r.Candidates[0]
	if c == nil || c.Content == nil {
		return "", fmt.Errorf("no content in the first candidate")
	}
	if len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", fmt.Errorf("no parts in the first candidate")
	}
	return c.Content.Parts[0].Text, nil
}
