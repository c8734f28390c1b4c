package storage

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BackupGallery creates a zip archive of the gallery slot and all stored
// image files, next to the slot. Backups happen only on explicit request;
// quota eviction stays lossy and never writes one.
func BackupGallery(galleryPath, imagesDir string) (string, error) {
	dir := filepath.Dir(galleryPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	timestamp := time.Now().Format("20060102-1504")
	zipPath := filepath.Join(dir, "backup-"+timestamp+".zip")

	if _, err := os.Stat(zipPath); err == nil {
		if err := os.Remove(zipPath); err != nil {
			return "", err
		}
	}

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	if err := addFileToZip(zipWriter, galleryPath, "gallery.json"); err != nil {
		return "", err
	}

	imageFiles, err := filepath.Glob(filepath.Join(imagesDir, "*"))
	if err != nil {
		return "", err
	}
	for _, file := range imageFiles {
		name := "images/" + filepath.Base(file)
		if err := addFileToZip(zipWriter, file, name); err != nil {
			continue // skip unreadable files
		}
	}

	return zipPath, nil
}

func addFileToZip(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
