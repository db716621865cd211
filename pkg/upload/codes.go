package upload

import "fmt"

// Transport error codes reported by the HTTP layer.
const (
	CodeOK        = 0
	CodeIniSize   = 1
	CodeFormSize  = 2
	CodePartial   = 3
	CodeNoFile    = 4
	CodeNoTmpDir  = 6
	CodeCantWrite = 7
	CodeExtension = 8
)

// Policy and persistence error codes.
const (
	CodeMaxSize            = 101
	CodeExtBlacklisted     = 102
	CodeExtNotWhitelisted  = 103
	CodeTypeBlacklisted    = 104
	CodeTypeNotWhitelisted = 105
	CodeMIMEBlacklisted    = 106
	CodeMIMENotWhitelisted = 107
	CodeMaxFilenameLength  = 108
	CodeMoveFailed         = 109
	CodeDuplicateFile      = 110
	CodeMkdirFailed        = 111
	CodeExternalMoveFailed = 112
	CodeNoPath             = 113
)

var messages = map[int]string{
	CodeOK:                 "The file uploaded with success",
	CodeIniSize:            "The uploaded file exceeds the maximum upload size of the server",
	CodeFormSize:           "The uploaded file exceeds the MAX_FILE_SIZE directive that was specified in the HTML form",
	CodePartial:            "The uploaded file was only partially uploaded",
	CodeNoFile:             "No file was uploaded",
	CodeNoTmpDir:           "Configured temporary upload folder is missing",
	CodeCantWrite:          "Failed to write uploaded file to disk",
	CodeExtension:          "Upload blocked by a server extension",
	CodeMaxSize:            "The uploaded file exceeds the defined maximum size",
	CodeExtBlacklisted:     "Upload of files with this extension is not allowed",
	CodeExtNotWhitelisted:  "Upload of files with this extension is not allowed",
	CodeTypeBlacklisted:    "Upload of files of this file type is not allowed",
	CodeTypeNotWhitelisted: "Upload of files of this file type is not allowed",
	CodeMIMEBlacklisted:    "Upload of files of this mime type is not allowed",
	CodeMIMENotWhitelisted: "Upload of files of this mime type is not allowed",
	CodeMaxFilenameLength:  "The uploaded file name exceeds the defined maximum length",
	CodeMoveFailed:         "Unable to move the uploaded file to its final destination",
	CodeDuplicateFile:      "A file with the name of the uploaded file already exists",
	CodeMkdirFailed:        "Unable to create the file's destination directory",
	CodeExternalMoveFailed: "Unable to upload the file to the remote destination",
	CodeNoPath:             "The configured destination path does not exist",
}

// MessageResolver returns a message for an error code, typically a translated one.
// An empty result falls back to the built-in English message.
type MessageResolver func(code int) string

// FileError is a single reason an uploaded file was rejected.
type FileError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewFileError builds a FileError, resolving its message with resolve first
// and the built-in catalog second.
func NewFileError(code int, resolve MessageResolver) FileError {
	var msg string
	if resolve != nil {
		msg = resolve(code)
	}
	if msg == "" {
		msg = DefaultMessage(code)
	}
	return FileError{Code: code, Message: msg}
}

// DefaultMessage returns the built-in English message for code.
func DefaultMessage(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown error message number: %d", code)
}

func (e FileError) Error() string {
	return e.Message
}
