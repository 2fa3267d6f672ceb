package editor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxFileSize bounds the files the editor will open.
const MaxFileSize = 1 << 20

var (
	// ErrNotText is returned when a file does not look like text.
	ErrNotText = errors.New("file is not text")
	// ErrTooLarge is returned for files over MaxFileSize.
	ErrTooLarge = errors.New("file too large")
	// ErrNoPath is returned when the editor has no backing file.
	ErrNoPath = errors.New("no file path configured")
)

// Document is a decoded text file.
type Document struct {
	Text    string
	MIME    string
	Charset string
}

// ReadDocument loads path as UTF-8 text.
func ReadDocument(path string) (Document, error) {
	if path == "" {
		return Document{}, ErrNoPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return Document{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode detects the type and charset of data and converts it to UTF-8.
func Decode(data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{MIME: "text/plain", Charset: "utf-8"}, nil
	}

	mtype := mimetype.Detect(data)
	if !isText(mtype) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotText, mtype.String())
	}

	label := detectCharset(data)
	text, err := toUTF8(data, label)
	if err != nil {
		return Document{}, err
	}
	return Document{Text: text, MIME: mtype.String(), Charset: label}, nil
}

// WriteDocument writes text to path, creating parent directories.
func WriteDocument(path, text string) (int, error) {
	if path == "" {
		return 0, ErrNoPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(text), nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func toUTF8(data []byte, label string) (string, error) {
	if label == "utf-8" || isASCII(data) {
		return string(data), nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		// Unknown label: keep the bytes as they are.
		return string(data), nil
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to transcode from %s: %w", label, err)
	}
	return string(out), nil
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
