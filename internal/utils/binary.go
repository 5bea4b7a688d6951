package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
// A NUL byte or an invalid UTF-8 sequence marks the data as binary; a multi-byte
// rune cut off at the end of the sample does not.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	for len(data) > 0 {
		runeValue, runeWidth := utf8.DecodeRune(data)
		if runeValue == utf8.RuneError && runeWidth == 1 {
			return utf8.FullRune(data)
		}
		data = data[runeWidth:]
	}
	return false
}

// IsFileBinary reads up to sniffLength bytes from the file at path and reports
// whether the content appears to be binary.
//
// #nosec G304
func IsFileBinary(path string) (bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, fmt.Errorf("open %s: %w", path, openError)
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false, fmt.Errorf("read %s: %w", path, readError)
	}
	return IsBinary(buffer[:bytesRead]), nil
}
