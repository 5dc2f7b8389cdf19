// Package imgmeta reads the alignment metadata that face extraction embeds
// in PNG text chunks. Faceswap-style crops carry a JSON payload under the
// "faceswap" keyword in a tEXt or iTXt chunk.
package imgmeta

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const metaKeyword = "faceswap"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// Alignments holds the per-face geometry produced during extraction.
type Alignments struct {
	LandmarksXY [][2]float32 `json:"landmarks_xy"`
	OriginalROI [][2]float32 `json:"original_roi,omitempty"`
}

// FaceMeta is the decoded metadata payload for one face crop.
type FaceMeta struct {
	Alignments Alignments `json:"alignments"`
}

// Decode extracts alignment metadata from raw image bytes. It returns
// (nil, nil) when the image is not a PNG or carries no metadata chunk, and an
// error only when a metadata chunk is present but unreadable.
func Decode(data []byte) (*FaceMeta, error) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return nil, nil
	}

	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		chunkType := string(data[pos+4 : pos+8])
		end := pos + 8 + length
		if length < 0 || end > len(data) {
			return nil, nil // truncated file, leave it to the image decoder
		}
		chunk := data[pos+8 : end]

		var payload []byte
		var err error
		switch chunkType {
		case "tEXt":
			payload, err = textPayload(chunk)
		case "iTXt":
			payload, err = internationalTextPayload(chunk)
		case "IEND":
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("malformed %s chunk: %w", chunkType, err)
		}
		if payload != nil {
			meta := &FaceMeta{}
			if err := json.Unmarshal(payload, meta); err != nil {
				return nil, fmt.Errorf("malformed alignment metadata: %w", err)
			}
			return meta, nil
		}

		pos = end + 4 // skip CRC
	}
	return nil, nil
}

// textPayload returns the text of a tEXt chunk when its keyword matches,
// nil otherwise. Layout: keyword, NUL, text.
func textPayload(chunk []byte) ([]byte, error) {
	keyword, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok {
		return nil, fmt.Errorf("missing keyword separator")
	}
	if string(keyword) != metaKeyword {
		return nil, nil
	}
	return rest, nil
}

// internationalTextPayload returns the text of an iTXt chunk when its keyword
// matches, inflating it when the compression flag is set. Layout: keyword,
// NUL, compression flag, compression method, language tag, NUL, translated
// keyword, NUL, text.
func internationalTextPayload(chunk []byte) ([]byte, error) {
	keyword, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok {
		return nil, fmt.Errorf("missing keyword separator")
	}
	if string(keyword) != metaKeyword {
		return nil, nil
	}
	if len(rest) < 2 {
		return nil, fmt.Errorf("missing compression header")
	}
	compressed := rest[0] == 1
	rest = rest[2:]

	// Skip language tag and translated keyword.
	for n := 0; n < 2; n++ {
		_, rest, ok = bytes.Cut(rest, []byte{0})
		if !ok {
			return nil, fmt.Errorf("missing text separator")
		}
	}

	if !compressed {
		return rest, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("bad zlib stream: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
