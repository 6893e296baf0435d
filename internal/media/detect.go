package media

import (
	"path/filepath"
	"strings"
)

// Format identifies an audio container the player can decode.
type Format int

const (
	Unknown Format = iota
	MP3
	WAV
	FLAC
	OGG
)

var audioExts = map[string]Format{
	".mp3":  MP3,
	".wav":  WAV,
	".flac": FLAC,
	".ogg":  OGG,
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) Format {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)] != Unknown
}

// SupportedExtsList returns a human-readable list of playable audio formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}
