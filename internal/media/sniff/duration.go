package sniff

import (
	"fmt"
	"io"
	"os"
)

// bitrateKbps maps the MPEG-1 Layer III bitrate index to kbit/s. Index 0 is
// "free" and index 15 is invalid; both map to 0.
var bitrateKbps = [16]int64{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

// maxSyncScan bounds how far past the ID3 tag we search for a frame sync.
const maxSyncScan = 64 * 1024

// EstimateDuration returns the approximate play time of an MP3 file in
// milliseconds, derived from the first frame header's bitrate and the audio
// payload size. The estimate assumes constant bitrate, which holds for the
// chapter files this library manages; VBR files come out rough but usable
// for the completion heuristic.
func EstimateDuration(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()

	tagSize, err := id3TagSize(f)
	if err != nil {
		return 0, err
	}

	bitrate, err := firstFrameBitrate(f, tagSize)
	if err != nil {
		return 0, err
	}

	audioBytes := size - tagSize
	if audioBytes <= 0 {
		return 0, fmt.Errorf("no audio payload in %s", path)
	}

	// kbit/s is exactly bits per millisecond.
	return audioBytes * 8 / bitrate, nil
}

// id3TagSize returns the total size of a leading ID3v2 tag (header
// included), or 0 when the file starts directly with frame data.
func id3TagSize(f *os.File) (int64, error) {
	header := make([]byte, 10)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if header[0] != 'I' || header[1] != 'D' || header[2] != '3' {
		return 0, nil
	}

	// Bytes 6-9 hold the tag size as a 28-bit syncsafe integer.
	size := int64(header[6]&0x7F)<<21 |
		int64(header[7]&0x7F)<<14 |
		int64(header[8]&0x7F)<<7 |
		int64(header[9]&0x7F)
	return size + 10, nil
}

// firstFrameBitrate scans from offset for an MPEG-1 Layer III frame header
// and returns its bitrate in kbit/s.
func firstFrameBitrate(f *os.File, offset int64) (int64, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	buf := make([]byte, maxSyncScan)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return 0, err
	}
	buf = buf[:n]

	for i := 0; i+3 < len(buf); i++ {
		if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
			continue
		}

		// Version and layer bits must be valid (not reserved).
		version := (buf[i+1] >> 3) & 0x3
		layer := (buf[i+1] >> 1) & 0x3
		if version == 1 || layer == 0 {
			continue
		}

		idx := (buf[i+2] >> 4) & 0xF
		if rate := bitrateKbps[idx]; rate > 0 {
			return rate, nil
		}
	}

	return 0, fmt.Errorf("no valid frame header found")
}
