package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxImageSize        = 5 << 20 // 5MB per file
	maxImagesPerProduct = 5
)

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageUploader stores multipart product images on disk and hands back the
// public paths they are referenced by.
type ImageUploader struct {
	dir string
}

func NewImageUploader(dir string) (*ImageUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &ImageUploader{dir: dir}, nil
}

// Save validates and writes the uploaded files, returning their public paths.
func (u *ImageUploader) Save(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > maxImagesPerProduct {
		return nil, fmt.Errorf("no máximo %d imagens por produto", maxImagesPerProduct)
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > maxImageSize {
			return nil, fmt.Errorf("imagem %s excede o limite de 5MB", file.Filename)
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedImageExts[ext] {
			return nil, fmt.Errorf("apenas imagens são permitidas (jpeg, jpg, png, gif, webp)")
		}
		if mime := file.Header.Get("Content-Type"); mime != "" && !strings.HasPrefix(mime, "image/") {
			return nil, fmt.Errorf("apenas imagens são permitidas (jpeg, jpg, png, gif, webp)")
		}

		name := "product-" + uuid.NewString() + ext
		if err := c.SaveUploadedFile(file, filepath.Join(u.dir, name)); err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		paths = append(paths, "/uploads/products/"+name)
	}

	return paths, nil
}

// Remove deletes a previously stored image by its public path. Missing files
// are ignored.
func (u *ImageUploader) Remove(publicPath string) {
	name := filepath.Base(publicPath)
	if name == "." || name == "/" {
		return
	}
	_ = os.Remove(filepath.Join(u.dir, name))
}
