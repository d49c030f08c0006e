package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/render"
)

const (
	imageField = "image"

	msgNoImage      = "No image file provided"
	msgNoFile       = "No selected file"
	msgNoJSON       = "No JSON data provided"
	msgNoText       = "No text provided"
	maxUploadMemory = 32 << 20
)

// formImage returns the uploaded image part. A non-empty badRequest is the
// message to answer with instead.
func formImage(r *http.Request) (file multipart.File, badRequest string) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, msgNoImage
	}
	file, header, err := r.FormFile(imageField)
	if err == nil {
		if header.Filename == "" {
			file.Close()
			return nil, msgNoFile
		}
		return file, ""
	}
	// net/http keeps a part with an empty filename as a plain form value.
	if _, ok := r.MultipartForm.Value[imageField]; ok {
		return nil, msgNoFile
	}
	return nil, msgNoImage
}

// jsonObject returns the request body as a JSON object, or nil when the
// request carries no JSON at all.
func jsonObject(r *http.Request) (map[string]json.RawMessage, error) {
	if r.Body == nil || render.GetRequestContentType(r) != render.ContentTypeJSON {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := render.DecodeJSON(r.Body, &obj); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// stringField reads key from obj. A missing key and a JSON null are both
// reported as absent.
func stringField(obj map[string]json.RawMessage, key string) (value string, present bool, err error) {
	raw, ok := obj[key]
	if !ok || string(raw) == "null" {
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("field %q must be a string", key)
	}
	return value, true, nil
}
