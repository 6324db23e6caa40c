package orchestrator

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// Recognized audio container signatures. Anything else in a non-empty
// artifact is treated as malformed rather than guessed at.
var audioMagic = [][]byte{
	{0x1A, 0x45, 0xDF, 0xA3}, // EBML (webm)
	[]byte("OggS"),
	[]byte("RIFF"),
	[]byte("fLaC"),
	{0xFF, 0xFB}, // mp3 frame sync
	[]byte("ID3"),
}

// EncodeArtifact converts a finalized audio artifact into the transport
// encoding the backend contracts require. A zero-length artifact encodes to
// the empty string; the analysis pipeline maps that to ErrEmptyInput.
// Malformed input fails with ErrEncoding and is never retried here — the
// caller decides whether to re-prompt the user.
func EncodeArtifact(a AudioArtifact) (string, error) {
	if len(a.Data) == 0 {
		return "", nil
	}

	if !recognizedContainer(a.Data) {
		return "", fmt.Errorf("%w: unrecognized audio container", ErrEncoding)
	}

	return base64.StdEncoding.EncodeToString(a.Data), nil
}

func recognizedContainer(data []byte) bool {
	for _, magic := range audioMagic {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}
