package analyzer

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/zjx20/arabic-analyzer/imaging"
	"github.com/zjx20/arabic-analyzer/prompt"
	"github.com/zjx20/arabic-analyzer/util"
)

type Handler struct {
	upstream       Upstream
	visionEndpoint string
	textEndpoint   string
}

func NewHandler(upstream Upstream, visionEndpoint, textEndpoint string) *Handler {
	return &Handler{
		upstream:       upstream,
		visionEndpoint: visionEndpoint,
		textEndpoint:   textEndpoint,
	}
}

type ocrResponse struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
	RawText string `json:"raw_text"`
}

type analyzeResponse struct {
	Success     bool   `json:"success"`
	Analysis    string `json:"analysis"`
	RawResponse string `json:"raw_response"`
}

type ocrAnalyzeResponse struct {
	Success          bool   `json:"success"`
	ExtractedText    string `json:"extracted_text"`
	Analysis         string `json:"analysis"`
	Message          string `json:"message,omitempty"`
	RawExtractedText string `json:"raw_extracted_text,omitempty"`
	ErrorInAnalysis  bool   `json:"error_in_analysis,omitempty"`
}

type generateResponse struct {
	Success       bool   `json:"success"`
	GeneratedText string `json:"generated_text"`
}

type generateAnalyzeResponse struct {
	Success         bool   `json:"success"`
	GeneratedText   string `json:"generated_text"`
	Analysis        string `json:"analysis"`
	ErrorInAnalysis bool   `json:"error_in_analysis,omitempty"`
}

type healthResponse struct {
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	APIKeysCount int               `json:"api_keys_count"`
	Endpoints    map[string]string `json:"endpoints"`
}

var endpointDescriptions = map[string]string{
	"ocr":                  "/ocr - Extract Arabic text from images",
	"analyze_arabic":       "/analyze_arabic - Analyze Arabic text for errors",
	"ocr_and_analyze":      "/ocr_and_analyze - Combined OCR + Analysis",
	"generate_arabic":      "/generate_arabic - Generate Arabic text",
	"generate_and_analyze": "/generate_and_analyze - Generate + Analyze",
}

// OCR handles POST /ocr.
func (h *Handler) OCR(w http.ResponseWriter, r *http.Request) {
	file, bad := formImage(r)
	if bad != "" {
		util.WriteError(w, r, http.StatusBadRequest, bad)
		return
	}
	defer file.Close()

	img, format, err := imaging.Decode(file)
	if err != nil {
		util.WriteError(w, r, http.StatusInternalServerError, "Error processing image: "+err.Error())
		return
	}
	log.Debugf("ocr: decoded %s image %v", format, img.Bounds())

	s := h.extract(r.Context(), img)
	if s.err != nil {
		util.WriteError(w, r, http.StatusInternalServerError,
			reason(s.err, "Failed to extract text from image", "Error processing image: "))
		return
	}
	render.JSON(w, r, &ocrResponse{Text: s.text, Success: true, RawText: s.raw})
}

// AnalyzeArabic handles POST /analyze_arabic.
func (h *Handler) AnalyzeArabic(w http.ResponseWriter, r *http.Request) {
	obj, err := jsonObject(r)
	if err != nil {
		util.WriteError(w, r, http.StatusBadRequest, "Invalid JSON data: "+err.Error())
		return
	}
	if len(obj) == 0 {
		util.WriteError(w, r, http.StatusBadRequest, msgNoJSON)
		return
	}
	text, _, err := stringField(obj, "text")
	if err != nil {
		util.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// the text is sent as received, trimming only decides emptiness
	if strings.TrimSpace(text) == "" {
		util.WriteError(w, r, http.StatusBadRequest, msgNoText)
		return
	}

	s := h.analyze(r.Context(), text)
	if s.err != nil {
		util.WriteError(w, r, http.StatusInternalServerError,
			reason(s.err, "Failed to analyze text", "Error analyzing text: "))
		return
	}
	render.JSON(w, r, &analyzeResponse{Success: true, Analysis: s.text, RawResponse: s.raw})
}

// OCRAndAnalyze handles POST /ocr_and_analyze.
func (h *Handler) OCRAndAnalyze(w http.ResponseWriter, r *http.Request) {
	const faultPrefix = "Error in OCR and analysis: "

	file, bad := formImage(r)
	if bad != "" {
		util.WriteError(w, r, http.StatusBadRequest, bad)
		return
	}
	defer file.Close()

	img, _, err := imaging.Decode(file)
	if err != nil {
		util.WriteError(w, r, http.StatusInternalServerError, faultPrefix+err.Error())
		return
	}

	ocr := h.extract(r.Context(), img)
	if ocr.err != nil {
		util.WriteError(w, r, http.StatusInternalServerError,
			firstStageReason(ocr.err, "OCR failed: ", faultPrefix))
		return
	}

	analysis, partial := analysisOutcome(h.analyze(r.Context(), ocr.text))
	resp := &ocrAnalyzeResponse{
		Success:         true,
		ExtractedText:   ocr.text,
		Analysis:        analysis,
		ErrorInAnalysis: partial,
	}
	if !partial {
		resp.Message = "OCR and analysis completed successfully"
		resp.RawExtractedText = ocr.raw
	}
	render.JSON(w, r, resp)
}

// requestPrompt returns the prompt of a generate request, falling back to
// the default when the body does not carry one.
func requestPrompt(r *http.Request) (string, error) {
	obj, err := jsonObject(r)
	if err != nil {
		return "", err
	}
	p, ok, err := stringField(obj, "prompt")
	if err != nil {
		return "", err
	}
	if !ok {
		return prompt.DefaultGeneratePrompt, nil
	}
	return p, nil
}

// GenerateArabic handles POST /generate_arabic.
func (h *Handler) GenerateArabic(w http.ResponseWriter, r *http.Request) {
	p, err := requestPrompt(r)
	if err != nil {
		util.WriteError(w, r, http.StatusBadRequest, "Invalid JSON data: "+err.Error())
		return
	}

	s := h.generate(r.Context(), p)
	if s.err != nil {
		util.WriteError(w, r, http.StatusInternalServerError,
			reason(s.err, "Failed to generate text", "Error generating text: "))
		return
	}
	render.JSON(w, r, &generateResponse{Success: true, GeneratedText: s.text})
}

// GenerateAndAnalyze handles POST /generate_and_analyze.
func (h *Handler) GenerateAndAnalyze(w http.ResponseWriter, r *http.Request) {
	const faultPrefix = "Error in generate and analyze: "

	p, err := requestPrompt(r)
	if err != nil {
		util.WriteError(w, r, http.StatusBadRequest, "Invalid JSON data: "+err.Error())
		return
	}

	gen := h.generate(r.Context(), p)
	if gen.err != nil {
		util.WriteError(w, r, http.StatusInternalServerError,
			firstStageReason(gen.err, "Text generation failed: ", faultPrefix))
		return
	}

	analysis, partial := analysisOutcome(h.analyze(r.Context(), gen.text))
	render.JSON(w, r, &generateAnalyzeResponse{
		Success:         true,
		GeneratedText:   gen.text,
		Analysis:        analysis,
		ErrorInAnalysis: partial,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, &healthResponse{
		Status:       "healthy",
		Message:      "Enhanced Arabic Text Analyzer API is running",
		APIKeysCount: h.upstream.KeyCount(),
		Endpoints:    endpointDescriptions,
	})
}
