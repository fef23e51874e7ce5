package post

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"SnapTalk/global/config"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFileNameExtensionWhitelist(t *testing.T) {
	cases := []struct {
		original string
		wantExt  string
	}{
		{"photo.png", ".png"},
		{"PHOTO.JPEG", ".jpeg"},
		{"anim.gif", ".gif"},
		{"pic.webp", ".webp"},
		{"payload.exe", ".jpg"},
		{"noextension", ".jpg"},
		{"../../escape.svg", ".jpg"},
	}
	for _, tc := range cases {
		name := imageFileName(tc.original)
		assert.True(t, strings.HasSuffix(name, tc.wantExt),
			"%s -> %s, want suffix %s", tc.original, name, tc.wantExt)
		assert.NotContains(t, name, "/")
	}
	assert.NotEqual(t, imageFileName("a.png"), imageFileName("a.png"))
}

func TestAllowedImageType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "IMAGE/GIF", "image/webp"} {
		assert.True(t, allowedImageType(ct), ct)
	}
	for _, ct := range []string{"text/plain", "application/octet-stream", "image/svg+xml", ""} {
		assert.False(t, allowedImageType(ct), ct)
	}
}

func multipartUpload(t *testing.T, filename, contentType string, payload []byte) (*gin.Context, *multipart.FileHeader) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/posts", body)
	c.Request.Header.Set("Content-Type", w.FormDataContentType())

	file, err := c.FormFile("image")
	require.NoError(t, err)
	return c, file
}

func withUploadDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := config.Global.UploadDir
	config.Global.UploadDir = dir
	t.Cleanup(func() { config.Global.UploadDir = old })
	return dir
}

func TestSavePostImageStoresFile(t *testing.T) {
	dir := withUploadDir(t)
	c, file := multipartUpload(t, "photo.png", "image/png", []byte("png-bytes"))

	url, err := savePostImage(c, file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/posts/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored := filepath.Join(dir, "posts", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestSavePostImageRejectsNonImage(t *testing.T) {
	withUploadDir(t)
	c, file := multipartUpload(t, "notes.txt", "text/plain", []byte("hello"))

	_, err := savePostImage(c, file)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrArgs)
}

func TestSavePostImageRejectsOversize(t *testing.T) {
	withUploadDir(t)
	c, file := multipartUpload(t, "big.png", "image/png", []byte("x"))
	file.Size = maxImageSize + 1

	_, err := savePostImage(c, file)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrArgs)
}
