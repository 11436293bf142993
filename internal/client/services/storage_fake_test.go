package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
)

type memFile struct {
	req       client.UploadRequest
	expiresAt time.Time
}

// memStorage is an in-memory client.Storage with a settable clock.
type memStorage struct {
	mu        sync.Mutex
	now       time.Time
	files     map[string]*memFile
	stored    []client.UploadRequest
	storeErrs []error
	fetches   int
	seq       int
}

func newMemStorage(now time.Time) *memStorage {
	return &memStorage{now: now, files: map[string]*memFile{}}
}

func (s *memStorage) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *memStorage) ciphertext(id string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[id].req.Ciphertext
}

func (s *memStorage) setCiphertext(id string, ct []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id].req.Ciphertext = ct
}

func (s *memStorage) Store(_ context.Context, r *client.UploadRequest) (*client.UploadReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := *r
	req.Ciphertext = append([]byte(nil), r.Ciphertext...)
	s.stored = append(s.stored, req)

	if len(s.storeErrs) > 0 {
		err := s.storeErrs[0]
		s.storeErrs = s.storeErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	s.seq++
	id := fmt.Sprintf("file%06d", s.seq)
	f := &memFile{req: req, expiresAt: s.now.Add(r.ExpiresIn)}
	s.files[id] = f
	return &client.UploadReceipt{ShortID: id, ExpiresAt: f.expiresAt}, nil
}

func (s *memStorage) lookup(id string) (*memFile, bool, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, false, common.ErrNotFoundOrExpired
	}
	return f, s.now.Before(f.expiresAt), nil
}

func (s *memStorage) Stat(_ context.Context, id string) (*client.FileStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, valid, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return &client.FileStat{
		Metadata:        f.req.Metadata,
		Valid:           valid,
		AccessProtected: f.req.AccessPassword != "",
	}, nil
}

func (s *memStorage) Fetch(_ context.Context, id string, token string, _ int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	f, valid, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, common.ErrNotFoundOrExpired
	}
	if f.req.AccessPassword != "" && token != "token-"+id {
		return nil, common.ErrAccessDenied
	}
	return append([]byte(nil), f.req.Ciphertext...), nil
}

func (s *memStorage) Authorize(_ context.Context, id string, accessPassword string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	if f.req.AccessPassword == "" || f.req.AccessPassword != accessPassword {
		return "", common.ErrAccessDenied
	}
	return "token-" + id, nil
}
