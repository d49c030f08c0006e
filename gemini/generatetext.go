package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

// SDKCaller performs the attempt through the generative-ai-go client instead
// of a raw REST call. The model is taken from the endpoint URL.
type SDKCaller struct {
	Options []option.ClientOption
}

func (c *SDKCaller) Call(ctx context.Context, endpoint, key string, req *Request) (*Response, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(key)}, c.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(ModelFromEndpoint(endpoint))
	if gc := req.GenerationConfig; gc != nil {
		model.SetTemperature(gc.Temperature)
		model.SetMaxOutputTokens(gc.MaxOutputTokens)
	}
	parts, err := toSDKParts(req)
	if err != nil {
		return nil, err
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate text: %w", err)
	}
	return fromSDKResponse(resp), nil
}

// ModelFromEndpoint extracts "gemini-2.5-flash" from
// ".../v1beta/models/gemini-2.5-flash:generateContent".
func ModelFromEndpoint(endpoint string) string {
	path := endpoint
	if u, err := url.Parse(endpoint); err == nil {
		path = u.Path
	}
	idx := strings.LastIndex(path, "models/")
	if idx == -1 {
		return defaultModel
	}
	name := path[idx+len("models/"):]
	if colon := strings.Index(name, ":"); colon != -1 {
		name = name[:colon]
	}
	name = strings.Trim(name, "/")
	if name == "" {
		return defaultModel
	}
	return name
}

func toSDKParts(req *Request) ([]genai.Part, error) {
	var parts []genai.Part
	for _, content := range req.Contents {
		if content == nil {
			continue
		}
		for _, p := range content.Parts {
			switch {
			case p == nil:
			case p.InlineData != nil:
				data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("bad inline data: %w", err)
				}
				parts = append(parts, genai.Blob{MIMEType: p.InlineData.MimeType, Data: data})
			default:
				parts = append(parts, genai.Text(p.Text))
			}
		}
	}
	return parts, nil
}

func fromSDKResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		cand := &Candidate{FinishReason: c.FinishReason.String()}
		if c.Content != nil {
			cand.Content = &Content{Role: c.Content.Role}
			for _, part := range c.Content.Parts {
				switch p := part.(type) {
				case genai.Text:
					cand.Content.Parts = append(cand.Content.Parts, &Part{Text: string(p)})
				case genai.Blob:
					cand.Content.Parts = append(cand.Content.Parts, &Part{InlineData: &InlineData{
						MimeType: p.MIMEType,
						Data:     base64.StdEncoding.EncodeToString(p.Data),
					}})
				default:
					cand.Content.Parts = append(cand.Content.Parts, &Part{
						Text: fmt.Sprintf("<unknown part type %T, value: %+v>", p, p),
					})
				}
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out
}
