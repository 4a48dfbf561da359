package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAttachment(t *testing.T) {
	tests := []struct {
		name       string
		attachment Attachment
		maxSize    int64
		wantErr    string
	}{
		{name: "Valid pdf", attachment: Attachment{FileName: "report.pdf", Content: []byte("%PDF")}},
		{name: "Upper case extension", attachment: Attachment{FileName: "SCAN.JPEG", Content: []byte("jpg")}},
		{name: "Valid docx", attachment: Attachment{FileName: "letter.docx", Content: []byte("PK")}},
		{name: "Empty file", attachment: Attachment{FileName: "empty.pdf"}, wantErr: "is empty"},
		{name: "Too large", attachment: Attachment{FileName: "big.png", Content: []byte("12345")}, maxSize: 4, wantErr: "exceeds maximum allowed size"},
		{name: "Disallowed type", attachment: Attachment{FileName: "run.exe", Content: []byte("MZ")}, wantErr: "file type not allowed"},
		{name: "No extension", attachment: Attachment{FileName: "README", Content: []byte("x")}, wantErr: "file type not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttachment(tt.attachment, tt.maxSize)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidAttachment)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("sources", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["sources"][0]
}

func TestReadAttachment(t *testing.T) {
	t.Run("Reads content", func(t *testing.T) {
		fh := multipartFile(t, "medical.pdf", []byte("%PDF-1.7"))
		attachment, err := ReadAttachment(fh, 1024)
		require.NoError(t, err)
		assert.Equal(t, "medical.pdf", attachment.FileName)
		assert.Equal(t, "%PDF-1.7", string(attachment.Content))
		assert.Equal(t, "pdf", attachment.Extension())
	})

	t.Run("Rejects oversized upload", func(t *testing.T) {
		fh := multipartFile(t, "big.pdf", []byte(strings.Repeat("a", 64)))
		_, err := ReadAttachment(fh, 16)
		assert.ErrorIs(t, err, ErrInvalidAttachment)
	})
}
