package uploadserver

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// Result is the body of a processed upload request.
type Result struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// FileResult describes one file of the batch.
type FileResult struct {
	ID       string             `json:"id,omitempty"`
	Element  string             `json:"element"`
	Name     string             `json:"name"`
	Size     int64              `json:"size"`
	MIMEType string             `json:"mimetype,omitempty"`
	Filename string             `json:"filename,omitempty"`
	Path     string             `json:"path,omitempty"`
	Valid    bool               `json:"valid"`
	Saved    bool               `json:"saved"`
	Errors   []upload.FileError `json:"errors,omitempty"`
}

// ErrorBody is the body of a rejected request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine readable code and a translated message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newResult(u *upload.Upload) Result {
	res := Result{Valid: u.IsValid(), Files: make([]FileResult, 0, u.Len())}
	for _, f := range u.Files() {
		fr := FileResult{
			Element:  f.Element(),
			Name:     f.Name(),
			Size:     f.Size(),
			MIMEType: f.MIMEType(),
			Valid:    f.IsValid(),
			Saved:    f.Saved(),
			Errors:   f.Errors(),
		}
		if f.Saved() {
			fr.Filename = f.Filename()
			fr.Path = f.Destination()
		}
		if id, ok := f.Get("record_id"); ok {
			fr.ID, _ = id.(string)
		}
		res.Files = append(res.Files, fr)
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
