package backup

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format version constants.
const (
	FormatV1 = 1 // plain indented JSON
	FormatV2 = 2 // header line + gzip payload
)

// MaxDecompressedSize is the maximum allowed size of decompressed snapshot data (500MB).
const MaxDecompressedSize = 500 * 1024 * 1024

// Header is the plain-text first line of a V2 snapshot.
type Header struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	Checksum     string    `json:"checksum"`
	Countries    int       `json:"countries"`
	Technologies int       `json:"technologies"`
	Paths        int       `json:"paths"`
	Compressed   bool      `json:"compressed"`
}

// DetectFormat reads the first line of a file to tell V1 from V2.
func DetectFormat(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("reading first line: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("file is empty")
	}

	var header Header
	if err := json.Unmarshal([]byte(line), &header); err == nil && header.Version == FormatV2 {
		return FormatV2, nil
	}
	if line[0] == '{' {
		return FormatV1, nil
	}
	return 0, fmt.Errorf("unrecognized backup format")
}

// WriteV1 writes snap as indented JSON.
func WriteV1(path string, snap *Snapshot) error {
	out := *snap
	out.Version = FormatV1
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// ReadV1 reads a plain JSON snapshot.
func ReadV1(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Version != FormatV1 {
		return nil, fmt.Errorf("unsupported backup version: %d", snap.Version)
	}
	return &snap, nil
}

// WriteV2 writes snap as a header line followed by a gzip-compressed payload.
func WriteV2(path string, snap *Snapshot) error {
	out := *snap
	out.Version = FormatV2
	payload, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.DefaultCompression)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gzw.Write(payload); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}

	header, err := json.Marshal(Header{
		Version:      FormatV2,
		CreatedAt:    snap.CreatedAt,
		Checksum:     checksum(compressed.Bytes()),
		Countries:    len(snap.Countries),
		Technologies: len(snap.Technologies),
		Paths:        len(snap.Paths),
		Compressed:   true,
	})
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}

	var file bytes.Buffer
	file.Grow(len(header) + 1 + compressed.Len())
	file.Write(header)
	file.WriteByte('\n')
	file.Write(compressed.Bytes())
	return writeFile(path, file.Bytes())
}

// ReadV2 reads a V2 snapshot, verifying the checksum before decompressing.
func ReadV2(path string) (*Snapshot, error) {
	_, compressed, err := readVerified(path)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	decompressed, err := io.ReadAll(io.LimitReader(gzr, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if int64(len(decompressed)) > MaxDecompressedSize {
		return nil, fmt.Errorf("decompressed payload exceeds maximum size of %d bytes", MaxDecompressedSize)
	}

	var snap Snapshot
	if err := json.Unmarshal(decompressed, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &snap, nil
}

// ReadHeader reads only the header line of a V2 snapshot.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	header, _, err := readHeader(bufio.NewReader(f))
	return header, err
}

// VerifyChecksum checks the integrity of a V2 snapshot without decompressing it.
func VerifyChecksum(path string) error {
	_, _, err := readVerified(path)
	return err
}

func readHeader(r *bufio.Reader) (*Header, *bufio.Reader, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header line: %w", err)
	}
	var header Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &header); err != nil {
		return nil, nil, fmt.Errorf("parsing header: %w", err)
	}
	if header.Version != FormatV2 {
		return nil, nil, fmt.Errorf("expected V2 format, got version %d", header.Version)
	}
	return &header, r, nil
}

func readVerified(path string) (*Header, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	header, rest, err := readHeader(bufio.NewReader(f))
	if err != nil {
		return nil, nil, err
	}
	compressed, err := io.ReadAll(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("reading compressed payload: %w", err)
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", header.Checksum, actual)
	}
	return header, compressed, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
