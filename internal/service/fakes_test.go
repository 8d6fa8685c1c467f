package service

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maitriconnect/maitri-api/internal/domain"
	"github.com/maitriconnect/maitri-api/internal/upload"
)

type fakeStore struct {
	mu      sync.Mutex
	seq     int
	saved   []string
	removed []string
}

func (s *fakeStore) Save(fh *multipart.FileHeader, kind upload.Kind) (string, error) {
	if !strings.HasSuffix(fh.Filename, ".png") {
		return "", upload.ErrUnsupportedType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	path := fmt.Sprintf("/uploads/%s-%d.png", kind, s.seq)
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *fakeStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, path)
	return nil
}

type fakeCache struct {
	events      []domain.Event
	ok          bool
	invalidated int
}

func (c *fakeCache) Get(context.Context) ([]domain.Event, bool, error) { return c.events, c.ok, nil }

func (c *fakeCache) Set(_ context.Context, events []domain.Event) error {
	c.events, c.ok = events, true
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.events, c.ok = nil, false
	c.invalidated++
	return nil
}

type sentMail struct{ To, Subject, HTML string }

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{to, subject, html})
	return r.err
}

func imageHeader(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("flyer", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["flyer"][0]
}
