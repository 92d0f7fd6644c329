package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sandeepkv93/estate-admin-backend/internal/storage"
)

const (
	imagesField   = "images"
	sniffLen      = 3072
	maxFilenameSz = 255
)

type uploadError struct {
	status  int
	code    string
	message string
}

func (e *uploadError) Error() string { return e.message }

// ImageUploader streams the "images" multipart field into the staging
// directory, checking count, size and content type of every part.
type ImageUploader struct {
	stager   *storage.Stager
	maxFiles int
	maxSize  int64
}

func NewImageUploader(stager *storage.Stager, maxFiles int, maxSize int64) *ImageUploader {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	if maxSize <= 0 {
		maxSize = 15 << 20
	}
	return &ImageUploader{stager: stager, maxFiles: maxFiles, maxSize: maxSize}
}

// MaxRequestBytes bounds a whole upload request including multipart framing.
func (u *ImageUploader) MaxRequestBytes() int64 {
	return int64(u.maxFiles)*u.maxSize + 1<<20
}

// Receive stages every image in the request. On failure nothing stays on disk.
func (u *ImageUploader) Receive(r *http.Request) ([]storage.StagedFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, &uploadError{http.StatusBadRequest, "BAD_REQUEST", "Expected multipart/form-data body"}
	}
	var staged []storage.StagedFile
	fail := func(err error) ([]storage.StagedFile, error) {
		_ = storage.RemoveStaged(staged)
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return fail(&uploadError{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large"})
			}
			return fail(&uploadError{http.StatusBadRequest, "BAD_REQUEST", "Malformed multipart body"})
		}
		if part.FormName() != imagesField || part.FileName() == "" {
			_, _ = io.Copy(io.Discard, part)
			_ = part.Close()
			continue
		}
		if len(staged) >= u.maxFiles {
			_ = part.Close()
			return fail(&uploadError{http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("At most %d images per request", u.maxFiles)})
		}
		f, err := u.stagePart(part)
		_ = part.Close()
		if err != nil {
			return fail(err)
		}
		staged = append(staged, f)
	}
	if len(staged) == 0 {
		return nil, &uploadError{http.StatusBadRequest, "BAD_REQUEST", "No images provided"}
	}
	return staged, nil
}

func (u *ImageUploader) stagePart(part *multipart.Part) (storage.StagedFile, error) {
	name := part.FileName()
	declared := part.Header.Get("Content-Type")
	if len(name) > maxFilenameSz {
		name = name[len(name)-maxFilenameSz:]
	}
	if !strings.HasPrefix(strings.ToLower(declared), "image/") {
		return storage.StagedFile{}, &uploadError{http.StatusBadRequest, "BAD_REQUEST", "Only image files are allowed"}
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(part, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return storage.StagedFile{}, &uploadError{http.StatusBadRequest, "BAD_REQUEST", "Could not read upload"}
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		return storage.StagedFile{}, &uploadError{http.StatusBadRequest, "BAD_REQUEST", "Only image files are allowed"}
	}

	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), part), u.maxSize+1)
	f, err := u.stager.Stage(name, detected.String(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return storage.StagedFile{}, &uploadError{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large"}
		}
		return storage.StagedFile{}, fmt.Errorf("stage upload: %w", err)
	}
	if f.Size > u.maxSize {
		_ = storage.RemoveStaged([]storage.StagedFile{f})
		return storage.StagedFile{}, &uploadError{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", fmt.Sprintf("Each image must be at most %d bytes", u.maxSize)}
	}
	return f, nil
}
