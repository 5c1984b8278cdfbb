package validation

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FileType is a corpus file format.
type FileType string

const (
	FileTypeJSON    FileType = "json"
	FileTypeXML     FileType = "xml"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeXZ      FileType = "xz"
	FileTypeUnknown FileType = "unknown"
)

// magicBytes defines magic byte signatures for file type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
}

// headerSize is how much of a file DetectFileType reads.
const headerSize = 512

// DetectFileType reads the head of a corpus file and returns its format.
// Binary formats are recognized by magic bytes, text formats by their first
// non-blank character, and the extension breaks ties. A binary signature that
// contradicts the extension is an error.
func DetectFileType(r io.Reader, filename string) (FileType, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	detected := detectFileTypeFromMagic(buf)
	expected := FileTypeFromExtension(filename)

	switch {
	case detected == FileTypeUnknown:
		if t := detectTextType(buf); t != FileTypeUnknown {
			return t, nil
		}
		return expected, nil
	case expected == FileTypeUnknown, detected == expected:
		return detected, nil
	default:
		return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is %s", expected, detected)
	}
}

// FileTypeFromExtension maps a file name to its format by extension.
// A trailing ".xz" yields FileTypeXZ; use InnerExtension for the wrapped type.
func FileTypeFromExtension(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FileTypeJSON
	case ".xml", ".zefania":
		return FileTypeXML
	case ".db", ".sqlite", ".sqlite3":
		return FileTypeSQLite
	case ".xz":
		return FileTypeXZ
	}
	return FileTypeUnknown
}

// InnerExtension strips a compression suffix: "kjv.json.xz" becomes "kjv.json".
func InnerExtension(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".xz") {
		return strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	return filename
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

// detectTextType looks at the first non-blank byte, skipping a UTF-8 BOM.
func detectTextType(buf []byte) FileType {
	buf = bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf"))
	buf = bytes.TrimLeft(buf, " \t\r\n")
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 {
		return FileTypeUnknown
	}
	switch buf[0] {
	case '{', '[':
		return FileTypeJSON
	case '<':
		return FileTypeXML
	}
	return FileTypeUnknown
}
