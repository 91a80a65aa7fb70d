package storage

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"depositdesk/internal/model"
)

// Policy constrains one evidence category's uploads
type Policy struct {
	MaxFileMB  float64
	MimeTypes  []string
	Extensions []string
}

// PolicyFor returns the upload policy for an evidence category, nil for an
// unknown category.
func PolicyFor(kind model.EvidenceType) *Policy {
	switch kind {
	case model.EvidencePhotos:
		return &Policy{
			MaxFileMB:  10,
			MimeTypes:  []string{"image/*"},
			Extensions: []string{"jpg", "jpeg", "png", "gif", "webp", "heic"},
		}
	case model.EvidenceDocuments:
		return &Policy{
			MaxFileMB:  15,
			MimeTypes:  []string{"application/pdf", "text/plain", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
			Extensions: []string{"pdf", "txt", "doc", "docx"},
		}
	}
	return nil
}

// Validate checks a file against the policy
func (p *Policy) Validate(fileName, contentType string, fileSizeBytes int64) error {
	if p == nil {
		return nil
	}

	if p.MaxFileMB > 0 {
		maxBytes := int64(p.MaxFileMB * 1024 * 1024)
		if fileSizeBytes > maxBytes {
			return fmt.Errorf("file size %d bytes exceeds maximum %d bytes (%.2f MB)",
				fileSizeBytes, maxBytes, p.MaxFileMB)
		}
	}

	if len(p.MimeTypes) > 0 && !p.matchesMimeType(contentType) {
		return fmt.Errorf("content type %s is not allowed. Allowed types: %v",
			contentType, p.MimeTypes)
	}

	if len(p.Extensions) > 0 && !p.matchesExtension(fileName) {
		return fmt.Errorf("file extension is not allowed. Allowed extensions: %v",
			p.Extensions)
	}

	return nil
}

// matchesMimeType checks contentType against the allowed patterns,
// supporting wildcards like "image/*"
func (p *Policy) matchesMimeType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	for _, allowed := range p.MimeTypes {
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "/*")
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
		} else if mediaType == allowed {
			return true
		}
	}
	return false
}

func (p *Policy) matchesExtension(fileName string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range p.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
