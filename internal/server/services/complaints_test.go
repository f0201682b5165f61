package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/logging"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type fakeStorage struct {
	mu       sync.Mutex
	saved    map[string][]byte
	types    map[string]string
	saveErr  error
	urlErr   error
	lastName string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStorage) Save(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[name] = b
	f.types[name] = contentType
	f.lastName = name
	return "stored/" + name, nil
}

func (f *fakeStorage) URL(_ context.Context, path string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://files/" + path, nil
}

func newComplaintService(st *fakeStorage) (*ComplaintService, *repomanager.InMemoryRepositoryManager) {
	m := repomanager.NewInMemoryRepositoryManager()
	svc := NewComplaintService(nil, m, st, logging.NewNopLogger())
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc, m
}

func TestSubmit_WithoutAttachment(t *testing.T) {
	st := newFakeStorage()
	svc, m := newComplaintService(st)

	c, err := svc.Submit(context.Background(), ComplaintInput{
		Name: " Bob ", Email: "bob@example.com", Location: "Riga", Message: "Street light is broken",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Bob", c.Name)
	assert.Empty(t, c.ImagePath)
	assert.Empty(t, st.saved)

	list, err := m.Complaints(nil).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmit_WithImage(t *testing.T) {
	st := newFakeStorage()
	svc, _ := newComplaintService(st)

	c, err := svc.Submit(context.Background(), ComplaintInput{
		Name: "Bob", Email: "bob@example.com", Message: "See photo",
		Attachment: &Attachment{Filename: "../My Photo.png", Content: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-f-]{36}-My_Photo\.png$`), st.lastName)
	assert.Equal(t, "stored/"+st.lastName, c.ImagePath)
	assert.Equal(t, pngBytes, st.saved[st.lastName], "content must be stored from the start")
	assert.Equal(t, "image/png", st.types[st.lastName])
}

func TestSubmit_RejectsNonImages(t *testing.T) {
	inputs := map[string][]byte{
		"notes.txt":  []byte("just some text"),
		"evil.svg":   []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`),
		"fake.png":   []byte("<html><body>hi</body></html>"),
		"binary.exe": []byte("MZ\x90\x00\x03\x00\x00\x00"),
	}
	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			st := newFakeStorage()
			svc, m := newComplaintService(st)

			_, err := svc.Submit(context.Background(), ComplaintInput{
				Name: "Bob", Email: "bob@example.com", Message: "x",
				Attachment: &Attachment{Filename: name, Content: bytes.NewReader(content)},
			})
			assert.ErrorIs(t, err, common.ErrUnsupportedMedia)
			assert.Empty(t, st.saved)

			list, _ := m.Complaints(nil).List(context.Background())
			assert.Empty(t, list, "rejected upload must not create a complaint")
		})
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc, _ := newComplaintService(newFakeStorage())

	_, err := svc.Submit(context.Background(), ComplaintInput{Name: "Bob", Email: "bob@example.com", Message: "   "})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSubmit_StorageFailure(t *testing.T) {
	st := newFakeStorage()
	st.saveErr = errors.New("disk full")
	svc, _ := newComplaintService(st)

	_, err := svc.Submit(context.Background(), ComplaintInput{
		Name: "Bob", Email: "bob@example.com", Message: "x",
		Attachment: &Attachment{Filename: "a.png", Content: bytes.NewReader(pngBytes)},
	})
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.ErrorContains(t, err, "disk full")
}

func TestList_ResolvesImageURLs(t *testing.T) {
	st := newFakeStorage()
	svc, _ := newComplaintService(st)
	ctx := context.Background()

	_, err := svc.Submit(ctx, ComplaintInput{Name: "A", Email: "a@example.com", Message: "no image"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, ComplaintInput{
		Name: "B", Email: "b@example.com", Message: "with image",
		Attachment: &Attachment{Filename: "b.png", Content: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "B", views[0].Name)
	assert.True(t, strings.HasPrefix(views[0].ImageURL, "https://files/stored/"))
	assert.Equal(t, "A", views[1].Name)
	assert.Empty(t, views[1].ImageURL)
}

func TestList_URLFailureLeavesLinkEmpty(t *testing.T) {
	st := newFakeStorage()
	svc, _ := newComplaintService(st)
	ctx := context.Background()

	_, err := svc.Submit(ctx, ComplaintInput{
		Name: "B", Email: "b@example.com", Message: "m",
		Attachment: &Attachment{Filename: "b.png", Content: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)

	st.urlErr = errors.New("presign failed")
	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].ImageURL)
	assert.NotEmpty(t, views[0].ImagePath)
}
