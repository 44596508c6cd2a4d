package smoke

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizeName turns a page name into the file name stem used for its
// screenshot: lower-cased, spaces replaced by underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// ScreenshotName returns the screenshot file name for a page name.
func ScreenshotName(prefix, name string) string {
	return prefix + NormalizeName(name) + ".png"
}

// ScreenshotPath joins folder and filename.
func ScreenshotPath(folder, filename string) string {
	if folder == "" {
		return filename
	}
	return filepath.Join(folder, filename)
}

// saveFile writes data to path, creating the folder if needed.
func saveFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return err
	}
	return file.Close()
}
