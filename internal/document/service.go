// Package document manages uploaded source documents: the files the
// answer service draws on. It validates and stores uploads, tracks their
// metadata in memory, and reports upload progress. Parsing, chunking and
// indexing of the stored files happen on the answer service side.
package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "docqa/backend/internal/errors"
)

// allowedExtensions is the upload whitelist.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// Info is the stored metadata of one uploaded document.
type Info struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"upload_date"`
	Status     string    `json:"status"`
}

// ProgressFunc receives upload progress as a percentage from 0 to 100.
// It is called from the uploading goroutine; implementations must be fast.
type ProgressFunc func(percent int)

// Service stores uploaded files on disk and their metadata in memory.
// Metadata lives only for the process lifetime.
type Service struct {
	mu      sync.Mutex
	dir     string
	maxSize int64
	docs    map[string]Info
	order   []string
}

// NewService creates the upload directory if needed and returns a service
// writing into it. maxSize caps a single upload in bytes.
func NewService(dir string, maxSize int64) (*Service, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Service{
		dir:     dir,
		maxSize: maxSize,
		docs:    make(map[string]Info),
	}, nil
}

// Upload validates and stores one document. filename's extension must be
// on the whitelist and size must not exceed the configured cap. A file
// with the same name as an earlier upload gets a timestamp suffix instead
// of overwriting it. progress, when non-nil, is reported as 0-100 while
// the payload is copied to disk; a failed copy removes the partial file.
func (s *Service) Upload(ctx context.Context, filename string, payload io.Reader, size int64, progress ProgressFunc) (*Info, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q is not supported", app_errors.ErrValidation, ext)
	}
	if size > s.maxSize {
		return nil, fmt.Errorf("%w: file exceeds the maximum size of %d bytes", app_errors.ErrValidation, s.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.destinationPath(filename)

	dst, err := os.Create(path) // #nosec G304 -- path is built from the managed upload dir
	if err != nil {
		return nil, fmt.Errorf("failed to create document file: %w", err)
	}

	written, err := io.Copy(dst, newProgressReader(payload, size, progress))
	if cErr := dst.Close(); err == nil {
		err = cErr
	}
	if err == nil && written > s.maxSize {
		err = fmt.Errorf("%w: file exceeds the maximum size of %d bytes", app_errors.ErrValidation, s.maxSize)
	}
	if err != nil {
		// Never leave a partial file behind a failed upload.
		_ = os.Remove(path)
		return nil, err
	}
	if progress != nil {
		progress(100)
	}

	info := Info{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(path),
		FileType:   strings.TrimPrefix(ext, "."),
		Size:       written,
		UploadDate: time.Now(),
		Status:     "active",
	}

	s.mu.Lock()
	s.docs[info.ID] = info
	s.order = append(s.order, info.ID)
	s.mu.Unlock()

	return &info, nil
}

// List returns all documents in upload order.
func (s *Service) List(ctx context.Context) []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := make([]Info, 0, len(s.order))
	for _, id := range s.order {
		infos = append(infos, s.docs[id])
	}
	return infos
}

// Get returns one document's metadata, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.docs[id]
	if !ok {
		return nil, app_errors.ErrNotFound
	}
	return &info, nil
}

// Delete removes a document's metadata and its stored file. The file is
// removed best-effort; missing files do not fail the delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	info, ok := s.docs[id]
	if ok {
		delete(s.docs, id)
		for i, docID := range s.order {
			if docID == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return app_errors.ErrNotFound
	}
	_ = os.Remove(filepath.Join(s.dir, info.Filename))
	return nil
}

// Count reports the number of stored documents.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// destinationPath resolves name collisions by appending a timestamp to
// the filename stem, mirroring how repeated uploads of the same document
// are kept side by side rather than overwritten.
func (s *Service) destinationPath(filename string) string {
	base := filepath.Base(filename)
	path := filepath.Join(s.dir, base)
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamped := fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(s.dir, stamped)
}

// progressReader wraps an upload payload and reports copy progress as a
// percentage of the declared size.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) io.Reader {
	if progress == nil || total <= 0 {
		return r
	}
	return &progressReader{r: r, total: total, lastPct: -1, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.lastPct {
			p.lastPct = pct
			p.progress(pct)
		}
	}
	return n, err
}
