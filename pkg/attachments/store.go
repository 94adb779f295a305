package attachments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sipeed/mediapaste/pkg/logger"
	"github.com/sipeed/mediapaste/pkg/media"
	"github.com/sipeed/mediapaste/pkg/reconcile"
)

type Record struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StoredPath string    `json:"stored_path"`
	MIMEType   string    `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	SHA256     string    `json:"sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type stateFile struct {
	Version int      `json:"version"`
	Records []Record `json:"records"`
}

// Store keeps pasted media on local disk and hands out references to it.
// It implements reconcile.Resolver.
type Store struct {
	mu        sync.RWMutex
	statePath string
	rootPath  string
	baseURL   string
	records   map[string]Record
	now       func() time.Time
}

var _ reconcile.Resolver = (*Store)(nil)

// NewStore opens (or creates) a store rooted at root. References are
// baseURL joined with the stored file's path relative to root, or file://
// URLs when baseURL is empty.
func NewStore(root, baseURL string) (*Store, error) {
	statePath := filepath.Join(root, "state", "attachments.json")
	if err := os.MkdirAll(filepath.Dir(statePath), 0755); err != nil {
		return nil, fmt.Errorf("create attachment state dir: %w", err)
	}

	s := &Store{
		statePath: statePath,
		rootPath:  root,
		baseURL:   strings.TrimRight(baseURL, "/"),
		records:   map[string]Record{},
		now:       time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveBytes stores data under a dated directory. Identical content is only
// stored once; the existing record is returned instead.
func (s *Store) SaveBytes(name, mimeType string, data []byte) (Record, error) {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.findBySHA256Locked(digest); ok {
		if _, err := os.Stat(rec.StoredPath); err == nil {
			return rec, nil
		}
		delete(s.records, rec.ID)
	}

	now := s.now().UTC()
	dayPath := filepath.Join(s.rootPath, "media", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dayPath, 0755); err != nil {
		return Record{}, fmt.Errorf("mkdir attachment day path: %w", err)
	}

	baseName := media.SanitizeFilename(name)
	if baseName == "" {
		baseName = "upload"
	}
	destPath := filepath.Join(dayPath, fmt.Sprintf("%s_%s_%s", now.Format("150405"), uuid.NewString()[:8], baseName))

	tmp := destPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Record{}, fmt.Errorf("write attachment: %w", err)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		_ = os.Remove(tmp)
		return Record{}, fmt.Errorf("move attachment into place: %w", err)
	}

	rec := Record{
		ID:         "att_" + uuid.NewString(),
		Name:       baseName,
		StoredPath: destPath,
		MIMEType:   mimeType,
		SizeBytes:  int64(len(data)),
		SHA256:     digest,
		CreatedAt:  now,
	}
	s.records[rec.ID] = rec
	if err := s.saveLocked(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) GetByID(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

func (s *Store) FindBySHA256(digest string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findBySHA256Locked(digest)
}

func (s *Store) findBySHA256Locked(digest string) (Record, bool) {
	for _, r := range s.records {
		if r.SHA256 == digest {
			return r, true
		}
	}
	return Record{}, false
}

// Reference returns the URL an editor should link to for rec.
func (s *Store) Reference(rec Record) (string, error) {
	rel, err := filepath.Rel(s.rootPath, rec.StoredPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("attachment %s is outside store root", rec.ID)
	}
	if s.baseURL == "" {
		abs, err := filepath.Abs(rec.StoredPath)
		if err != nil {
			return "", err
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + path.Join(segments...), nil
}

// Resolve stores the upload and returns its reference. Empty uploads
// resolve to no reference.
func (s *Store) Resolve(ctx context.Context, up reconcile.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(up.Data) == 0 {
		logger.WarnCF("attachments", "Empty upload, nothing stored", map[string]interface{}{
			"name": up.Name,
		})
		return "", nil
	}

	rec, err := s.SaveBytes(up.Name, up.MIMEType, up.Data)
	if err != nil {
		return "", err
	}
	ref, err := s.Reference(rec)
	if err != nil {
		return "", err
	}
	logger.InfoCF("attachments", "Stored upload", map[string]interface{}{
		"id":         rec.ID,
		"name":       rec.Name,
		"size_bytes": rec.SizeBytes,
	})
	return ref, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read attachment state: %w", err)
	}
	var st stateFile
	if err := json.Unmarshal(data, &st); err != nil {
		logger.WarnCF("attachments", "Corrupt attachment state, starting empty", map[string]interface{}{
			"path":  s.statePath,
			"error": err.Error(),
		})
		return nil
	}
	for _, r := range st.Records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *Store) saveLocked() error {
	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}

	data, err := json.MarshalIndent(stateFile{Version: 1, Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal attachment store: %w", err)
	}
	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write attachment temp: %w", err)
	}
	if err := os.Rename(tmp, s.statePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace attachment state: %w", err)
	}
	return nil
}
