package upload

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest file accepted into a batch.
const MaxFileSize int64 = 50 * 1024 * 1024

// SniffLen is how much of a file is inspected when its type has to be guessed.
const SniffLen = 3072

const (
	TypePDF  = "application/pdf"
	TypeText = "text/plain"
	TypeDoc  = "application/msword"
	TypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedTypes = map[string]struct{}{
	TypePDF:  {},
	TypeText: {},
	TypeDoc:  {},
	TypeDocx: {},
}

// FileError names the file that failed validation.
type FileError struct {
	FileName string
	Err      error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.FileName, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// ValidateFile checks a single file against the size limit and the type allow-list.
func ValidateFile(name, contentType string, size int64) error {
	if size > MaxFileSize {
		return &FileError{FileName: name, Err: fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, MaxFileSize)}
	}
	if _, ok := allowedTypes[baseType(contentType)]; !ok {
		return &FileError{FileName: name, Err: fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)}
	}
	return nil
}

// Validate checks every file and reports the first one that fails.
// Either all files pass or the batch is rejected as a whole.
func Validate(files []File) error {
	for _, f := range files {
		if err := ValidateFile(f.Name, f.ContentType, f.Size); err != nil {
			return err
		}
	}
	return nil
}

// DetectContentType returns the media type to record for a file. The declared
// type wins unless it is missing or generic, in which case head is sniffed.
func DetectContentType(declared string, head []byte) string {
	t := baseType(declared)
	if NeedsSniffing(t) && len(head) > 0 {
		return baseType(mimetype.Detect(head).String())
	}
	return t
}

// NeedsSniffing reports whether a declared type says nothing about the content.
func NeedsSniffing(contentType string) bool {
	t := baseType(contentType)
	return t == "" || t == "application/octet-stream"
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	t, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		t, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(t))
}
