package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{name: "pdf", contentType: TypePDF, size: 1024},
		{name: "text", contentType: TypeText, size: 1},
		{name: "text with charset", contentType: "text/plain; charset=utf-8", size: 1},
		{name: "legacy word", contentType: TypeDoc, size: 1},
		{name: "modern word", contentType: TypeDocx, size: 1},
		{name: "exactly 50 MiB", contentType: TypePDF, size: 50 * 1024 * 1024},
		{name: "51 MiB", contentType: TypePDF, size: 51 * 1024 * 1024, wantErr: ErrFileTooLarge},
		{name: "one byte over", contentType: TypePDF, size: 50*1024*1024 + 1, wantErr: ErrFileTooLarge},
		{name: "png", contentType: "image/png", size: 10, wantErr: ErrUnsupportedType},
		{name: "missing type", contentType: "", size: 10, wantErr: ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile("report", tt.contentType, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var fe *FileError
			assert.ErrorAs(t, err, &fe)
			assert.Equal(t, "report", fe.FileName)
		})
	}
}

func TestValidate_AllOrNothing(t *testing.T) {
	files := []File{
		{Name: "a.pdf", ContentType: TypePDF, Size: 10},
		{Name: "b.png", ContentType: "image/png", Size: 10},
		{Name: "c.txt", ContentType: TypeText, Size: MaxFileSize + 1},
	}
	err := Validate(files)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), "b.png")

	assert.NoError(t, Validate(files[:1]))
	assert.NoError(t, Validate(nil))
}

func TestDetectContentType(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")

	assert.Equal(t, TypePDF, DetectContentType("", pdf))
	assert.Equal(t, TypePDF, DetectContentType("application/octet-stream", pdf))
	assert.Equal(t, TypeText, DetectContentType("", []byte("plain words\n")))
	assert.Equal(t, TypeText, DetectContentType("Text/Plain; charset=utf-8", nil))
	assert.Equal(t, "image/png", DetectContentType("image/png", pdf))
	assert.Equal(t, "application/octet-stream", DetectContentType("application/octet-stream", nil))
}
