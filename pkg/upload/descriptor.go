package upload

// Descriptor is one raw uploaded file as received by the HTTP layer,
// before any validation took place.
type Descriptor struct {
	// Element is the form field path in dot notation, e.g. "gallery.0".
	Element string `json:"element"`
	// Name is the client-submitted filename.
	Name string `json:"name"`
	// Type is the client-declared MIME type. It is never trusted.
	Type string `json:"type"`
	// TmpPath is where the received bytes are stored.
	TmpPath string `json:"-"`
	// Error is the transport error code, CodeOK on success.
	Error int `json:"error"`
	// Size is the number of received bytes.
	Size int64 `json:"size"`
}
