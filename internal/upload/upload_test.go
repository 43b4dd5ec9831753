package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	for name, want := range map[string]bool{
		"leaf.png":      true,
		"leaf.JPG":      true,
		"leaf.jpeg":     true,
		"leaf.gif":      true,
		"leaf.webp":     false,
		"leaf":          false,
		"leaf.":         false,
		"archive.png.z": false,
	} {
		require.Equal(t, want, Allowed(name), name)
	}
}

func TestSecureFilename(t *testing.T) {
	for in, want := range map[string]string{
		"My cool photo.jpg": "My_cool_photo.jpg",
		"../../etc/passwd":  "etc_passwd",
		"Fücus lyräta.png":  "Fucus_lyrata.png",
		"..hidden.png":      "hidden.png",
		"con.jpg":           "_con.jpg",
		"日本語":               "",
	} {
		require.Equal(t, want, SecureFilename(in), in)
	}
}

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaverSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	saver, err := NewSaver(dir)
	require.NoError(t, err)
	saver.nowFn = func() time.Time { return time.Unix(1700000000, 0) }

	url, err := saver.Save(multipartFile(t, "monstera leaf.png", []byte("png-bytes")), 7, false)
	require.NoError(t, err)
	require.Equal(t, "/static/uploads/7_monstera_leaf.png", url)
	stored, err := os.ReadFile(filepath.Join(dir, "7_monstera_leaf.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(stored))

	url, err = saver.Save(multipartFile(t, "spots.jpg", []byte("jpg")), 7, true)
	require.NoError(t, err)
	require.Equal(t, "/static/uploads/7_1700000000_spots.jpg", url)

	_, err = saver.Save(multipartFile(t, "notes.txt", []byte("x")), 7, false)
	require.ErrorIs(t, err, ErrNotAllowed)

	_, err = saver.Save(nil, 7, false)
	require.ErrorIs(t, err, ErrNoFile)
}
