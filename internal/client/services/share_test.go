package services

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroshare/zeroshare/internal/client/client"
	"github.com/zeroshare/zeroshare/internal/common"
	"github.com/zeroshare/zeroshare/internal/logging"
	sc "github.com/zeroshare/zeroshare/internal/server/config"
	"github.com/zeroshare/zeroshare/internal/server/httpapi"
	"github.com/zeroshare/zeroshare/internal/server/repositories/files"
	serverservices "github.com/zeroshare/zeroshare/internal/server/services"
	"github.com/zeroshare/zeroshare/internal/server/storage"
)

// startServer runs the real HTTP endpoint over in-memory backends so the
// client workflow is exercised end to end.
func startServer(t *testing.T, maxDownloads int) *httptest.Server {
	t.Helper()

	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.MaxDownloads = maxDownloads

	repo := files.NewInMemoryRepository()
	store := storage.NewMemoryStore()
	svc := serverservices.NewShareService(repo, store, cfg, logging.NewNop())
	srv := httptest.NewServer(httpapi.NewServer(":0", svc, cfg.MaxUploadSize, logging.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newShareService(t *testing.T, srv *httptest.Server) *ShareService {
	t.Helper()

	transport, err := client.NewHTTPClient(srv.URL, 10*time.Second)
	require.NoError(t, err)
	return NewShareService(transport, srv.URL)
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestSendReceive(t *testing.T) {
	srv := startServer(t, 1)
	svc := newShareService(t, srv)
	ctx := context.Background()

	content := []byte("the quick brown fox")
	src := writeTempFile(t, "note.txt", content)

	link, err := svc.Send(ctx, src, nil)
	require.NoError(t, err)
	assert.Contains(t, link, srv.URL+"/download/")
	assert.Contains(t, link, "#")

	out := filepath.Join(t.TempDir(), "received.txt")
	written, err := svc.Receive(ctx, link, nil, out)
	require.NoError(t, err)
	assert.Equal(t, out, written)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// single-download object: the second attempt finds nothing
	_, err = svc.Receive(ctx, link, nil, filepath.Join(t.TempDir(), "again.txt"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSendReceive_DefaultOutputName(t *testing.T) {
	srv := startServer(t, 1)
	svc := newShareService(t, srv)
	ctx := context.Background()

	src := writeTempFile(t, "original.bin", []byte{0x01, 0x02, 0x03})

	link, err := svc.Send(ctx, src, nil)
	require.NoError(t, err)

	// run in a temp dir so the default name lands there
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	written, err := svc.Receive(ctx, link, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "original.bin", written)

	got, err := os.ReadFile(filepath.Join(dir, "original.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
}

func TestSendReceive_Passphrase(t *testing.T) {
	srv := startServer(t, 2)
	svc := newShareService(t, srv)
	ctx := context.Background()

	content := []byte("protected payload")
	src := writeTempFile(t, "secret.txt", content)

	link, err := svc.Send(ctx, src, []byte("correct horse"))
	require.NoError(t, err)

	parsed, err := ParseShareLink(link)
	require.NoError(t, err)
	require.True(t, parsed.Protected())

	dir := t.TempDir()

	// missing passphrase fails before any download slot is spent
	_, err = svc.Receive(ctx, link, nil, filepath.Join(dir, "a.txt"))
	assert.ErrorIs(t, err, common.ErrFormat)

	// wrong passphrase spends a slot but yields no plaintext
	_, err = svc.Receive(ctx, link, []byte("wrong"), filepath.Join(dir, "b.txt"))
	assert.ErrorIs(t, err, common.ErrAuthentication)
	assert.NoFileExists(t, filepath.Join(dir, "b.txt"))

	// correct passphrase on the remaining slot succeeds
	out := filepath.Join(dir, "c.txt")
	_, err = svc.Receive(ctx, link, []byte("correct horse"), out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSend_MissingFile(t *testing.T) {
	srv := startServer(t, 1)
	svc := newShareService(t, srv)

	_, err := svc.Send(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), nil)
	assert.Error(t, err)
}

func TestReceive_TamperedPackage(t *testing.T) {
	srv := startServer(t, 1)
	svc := newShareService(t, srv)
	ctx := context.Background()

	src := writeTempFile(t, "doc.txt", []byte("payload"))

	link, err := svc.Send(ctx, src, nil)
	require.NoError(t, err)

	// swap the fragment for a different valid key
	parsed, err := ParseShareLink(link)
	require.NoError(t, err)
	otherKey := make([]byte, len(parsed.Key))
	copy(otherKey, parsed.Key)
	otherKey[0] ^= 0xff
	tampered := (&ShareLink{ID: parsed.ID, Key: otherKey}).String(srv.URL)

	_, err = svc.Receive(ctx, tampered, nil, filepath.Join(t.TempDir(), "out.txt"))
	assert.ErrorIs(t, err, common.ErrAuthentication)
}
