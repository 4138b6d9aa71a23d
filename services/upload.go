package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions is the allow-set of uploadable document extensions
var AllowedExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
	"txt":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// fileExtension returns the lowercased text after the last dot, or "" when there is none
func fileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// AllowedFile reports whether filename carries an extension from AllowedExtensions
func AllowedFile(filename string) bool {
	return AllowedExtensions[fileExtension(filename)]
}

// SanitizeFilename reduces a client supplied filename to a flat ASCII name.
// Compatibility characters are decomposed and non-ASCII runes dropped, path
// separators and whitespace become underscores, anything outside
// [A-Za-z0-9_.-] is removed and leading or trailing dots and underscores are
// trimmed. The result may be empty.
func SanitizeFilename(filename string) string {
	decomposed := norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

// StoredName builds the name a file is stored under: the sanitized stem, an
// 8 character random suffix and the lowercased allowed extension.
func StoredName(originalFilename string) string {
	ext := SanitizeFilename(fileExtension(originalFilename))

	stem := originalFilename
	if idx := strings.LastIndex(originalFilename, "."); idx >= 0 {
		stem = originalFilename[:idx]
	}
	stem = SanitizeFilename(stem)
	if stem == "" {
		stem = "upload"
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if ext == "" {
		return fmt.Sprintf("%s_%s", stem, suffix)
	}
	return fmt.Sprintf("%s_%s.%s", stem, suffix, ext)
}

// FileStore persists uploaded documents through a StorageProvider
type FileStore struct {
	provider StorageProvider
}

// NewFileStore creates a file store backed by provider
func NewFileStore(provider StorageProvider) *FileStore {
	return &FileStore{provider: provider}
}

// Save stores the content of r under a sanitized, unique name and returns
// that name. Content larger than limit bytes fails with ErrRequestTooLarge
// and nothing is written.
func (s *FileStore) Save(ctx context.Context, originalFilename string, r io.Reader, limit int64) (string, int64, error) {
	if limit < 0 {
		limit = 0
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to read upload: %v", ErrStorage, err)
	}
	if n > limit {
		return "", 0, ErrRequestTooLarge
	}

	name := StoredName(originalFilename)
	if _, err := s.provider.UploadReader(ctx, bytes.NewReader(buf.Bytes()), name, ContentTypeFor(name), n); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return name, n, nil
}

// Retrieve opens a stored file. Unknown or malformed names yield ErrFileNotFound.
func (s *FileStore) Retrieve(ctx context.Context, storedName string) (io.ReadCloser, string, error) {
	if storedName == "" || SanitizeFilename(storedName) != storedName {
		return nil, "", ErrFileNotFound
	}
	return s.provider.Get(ctx, storedName)
}

// Remove deletes a stored file; missing files are not an error
func (s *FileStore) Remove(ctx context.Context, storedName string) error {
	if storedName == "" {
		return nil
	}
	return s.provider.Delete(ctx, storedName)
}
