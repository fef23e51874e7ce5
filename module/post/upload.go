package post

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"SnapTalk/global/config"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20 // 5 MB

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// allowedImageType accepts the image content types the post feed renders.
func allowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// imageFileName builds a collision-safe stored name. The client extension is
// kept only when whitelisted; anything else falls back to .jpg.
func imageFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedImageExt[ext] {
		ext = ".jpg"
	}
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}

// savePostImage validates and stores an uploaded post image, returning the
// public URL path the stored file is served under.
func savePostImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxImageSize {
		return "", errs.ErrArgs.WithDetail("image must be at most 5 MB")
	}
	if ct := file.Header.Get("Content-Type"); !allowedImageType(ct) {
		return "", errs.ErrArgs.WithDetail("only jpeg, png, gif and webp images are allowed")
	}

	dir := filepath.Join(config.Global.UploadDir, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.WrapMsg(err, "create upload dir", "dir", dir)
	}
	name := imageFileName(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		return "", errs.WrapMsg(err, "store post image", "name", name)
	}
	return path.Join("/uploads/posts", name), nil
}
