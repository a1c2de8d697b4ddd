package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// UploadFile handles POST /v1/upload.
// It saves the dish image under the upload directory and returns the URL
// the client stores on the product.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// 2. Create the upload directory if it doesn't exist
	uploadPath := h.Cfg.UploadDir
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		os.MkdirAll(uploadPath, 0755)
	}

	// 3. Generate a safe unique filename (slugged original + uuid + extension)
	ext := filepath.Ext(file.Filename)
	base := slug.Make(strings.TrimSuffix(file.Filename, ext))
	if base == "" {
		base = "image"
	}
	newFilename := fmt.Sprintf("%s-%s%s", base, uuid.New().String(), ext)
	savePath := filepath.Join(uploadPath, newFilename)

	// 4. Save the file
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	// 5. Return the public URL
	publicURL := fmt.Sprintf("%s/uploads/%s", h.Cfg.BaseURL, newFilename)

	c.JSON(http.StatusOK, gin.H{
		"url": publicURL,
	})
}
