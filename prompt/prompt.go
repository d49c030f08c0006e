package prompt

import (
	"bytes"
	"text/template"

	"github.com/zjx20/arabic-analyzer/gemini"
)

const (
	// OCRInstruction asks for the Arabic text only, without explanation.
	OCRInstruction = "استخرج النص العربي من هذه الصورة بدقة. أريد النص العربي فقط بدون أي تفسير أو تعليق إضافي."

	DefaultGeneratePrompt = "اكتب لي نصا عربيا قصيرا"
)

var (
	ExtractConfig  = gemini.GenerationConfig{Temperature: 0.1, MaxOutputTokens: 2048}
	AnalyzeConfig  = gemini.GenerationConfig{Temperature: 0.3, MaxOutputTokens: 4096}
	GenerateConfig = gemini.GenerationConfig{Temperature: 0.7, MaxOutputTokens: 1024}
)

// grammar, morphology, spelling and syntax sections, then the corrected text
var correctionTemplate = template.Must(template.New("correction").Parse(`
قم بتصحيح الأخطاء في النص التالي:

**1. أخطاء النحو:**
اذكر الأخطاء النحوية وتصحيحها بهذا الشكل:
الخطأ_النحوي1 -> التصحيح_النحوي1
الخطأ_النحوي2 -> التصحيح_النحوي2

**2. أخطاء الصرف:**
اذكر الأخطاء الصرفية وتصحيحها بهذا الشكل:
الخطأ_الصرفي1 -> التصحيح_الصرفي1
الخطأ_الصرفي2 -> التصحيح_الصرفي2

**3. أخطاء الإملاء:**
اذكر الأخطاء الإملائية وتصحيحها بهذا الشكل:
الخطأ_الإملائي1 -> التصحيح_الإملائي1
الخطأ_الإملائي2 -> التصحيح_الإملائي2

**4. أخطاء التركيب:**
اذكر أخطاء التركيب وتصحيحها بهذا الشكل:
الخطأ_التركيبي1 -> التصحيح_التركيبي1
الخطأ_التركيبي2 -> التصحيح_التركيبي2

**النص المُصحح كاملاً:**
اكتب النص كاملاً بعد التصحيح

**النص المراد تصحيحه:**
{{ .Text }}

ملاحظة: إذا لم توجد أخطاء في أي قسم، اكتب "لا توجد أخطاء" تحت ذلك القسم.
`))

// Correction renders the four-section correction request for text.
func Correction(text string) (string, error) {
	out := bytes.NewBuffer(nil)
	err := correctionTemplate.Execute(out, struct{ Text string }{Text: text})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func newRequest(cfg gemini.GenerationConfig, parts ...*gemini.Part) *gemini.Request {
	return &gemini.Request{
		Contents:         []*gemini.Content{{Parts: parts}},
		GenerationConfig: &cfg,
	}
}

// Extract builds the OCR request around a base64 JPEG.
func Extract(imageBase64 string) *gemini.Request {
	return newRequest(ExtractConfig,
		&gemini.Part{Text: OCRInstruction},
		&gemini.Part{InlineData: &gemini.InlineData{MimeType: "image/jpeg", Data: imageBase64}},
	)
}

func Analyze(text string) (*gemini.Request, error) {
	p, err := Correction(text)
	if err != nil {
		return nil, err
	}
	return newRequest(AnalyzeConfig, &gemini.Part{Text: p}), nil
}

func Generate(userPrompt string) *gemini.Request {
	return newRequest(GenerateConfig, &gemini.Part{Text: userPrompt})
}
