// Package utils holds the download and on-disk cache helpers used to fetch
// feeds and reference data.
package utils

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotFound = errors.New("file not found on server")

var (
	// CacheDir is where GetCachedReader keeps downloaded files.
	CacheDir = "data/cache"
	Client   = &http.Client{Timeout: 2 * time.Minute}
)

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 5*1024*1024 {
		log.Printf("%s: Downloaded %d MB", pw.label, pw.total/1024/1024)
		pw.last = pw.total
	}
	return n, err
}

func get(url string) (*http.Response, error) {
	resp, err := Client.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	if err := resp.Body.Close(); err != nil {
		log.Printf("Error closing response body: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("bad status: %s", resp.Status)
}

// DownloadFile writes url to path through a temp file and a rename, so a
// failed download never leaves a partial file behind.
func DownloadFile(url, path string) error {
	resp, err := get(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing temp file %s: %v", tmpName, err)
		}
	}()

	pw := &progressWriter{Writer: tmpFile, label: filepath.Base(path)}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// GetCacheFileName returns the local file name for url. The log prefix is
// folded in so two feeds with the same base name do not collide.
func GetCacheFileName(url, logPrefix string) string {
	urlParts := strings.Split(url, "/")
	fileName := urlParts[len(urlParts)-1]

	sanitizedPrefix := strings.Trim(logPrefix, "[]")
	sanitizedPrefix = strings.ReplaceAll(sanitizedPrefix, " ", "_")
	if sanitizedPrefix != "" {
		fileName = sanitizedPrefix + "_" + fileName
	}
	return fileName
}

// GetCachedReader opens url. With useCache the body is downloaded once into
// CacheDir and served from disk afterwards; live feeds pass false.
func GetCachedReader(url string, useCache bool, logPrefix string) (io.ReadCloser, error) {
	if !useCache {
		log.Printf("%s Streaming from %s", logPrefix, url)
		resp, err := get(url)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	if err := os.MkdirAll(CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	localPath := filepath.Join(CacheDir, GetCacheFileName(url, logPrefix))
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		log.Printf("%s Downloading %s", logPrefix, url)
		if err := DownloadFile(url, localPath); err != nil {
			return nil, err
		}
	} else {
		log.Printf("%s Using cached file: %s", logPrefix, localPath)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return f, nil
}

// Fetch reads the whole body of url, or of path when url is a local file.
func Fetch(url string, useCache bool, logPrefix string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return os.ReadFile(url)
	}
	r, err := GetCachedReader(url, useCache, logPrefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("%s Error closing reader: %v", logPrefix, err)
		}
	}()
	return io.ReadAll(r)
}
