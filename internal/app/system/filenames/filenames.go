// internal/app/system/filenames/filenames.go

// Package filenames derives file types from extensions and cleans uploaded
// filenames before they are stored.
package filenames

import (
	"path"
	"strings"

	"github.com/imagenix/mediateca/internal/domain/models"
)

// typeByExt maps a lowercased extension (no dot) to its file type.
var typeByExt = map[string]string{
	"pdf":  models.FileTypePDF,
	"doc":  models.FileTypeWord,
	"docx": models.FileTypeWord,
	"xls":  models.FileTypeExcel,
	"xlsx": models.FileTypeExcel,
	"ppt":  models.FileTypePPTX,
	"pptx": models.FileTypePPTX,
	"jpg":  models.FileTypeImage,
	"jpeg": models.FileTypeImage,
	"png":  models.FileTypeImage,
	"gif":  models.FileTypeImage,
	"mp4":  models.FileTypeVideo,
	"mp3":  models.FileTypeAudio,
	"aac":  models.FileTypeAudio,
	"wav":  models.FileTypeAudio,
	"flac": models.FileTypeAudio,
	"aiff": models.FileTypeAudio,
	"alac": models.FileTypeAudio,
	"ogg":  models.FileTypeAudio,
}

// TypeForName returns the file type for an original filename, falling back
// to FileTypeOther for unmatched extensions.
func TypeForName(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if t, ok := typeByExt[ext]; ok {
		return t
	}
	return models.FileTypeOther
}

// mojibake fixes for Latin-1 bytes mis-decoded as UTF-8, the usual damage
// done to accented names by browser multipart encoders.
var mojibakeFixes = []struct{ bad, good string }{
	{"Ã¡", "á"}, // á
	{"Ã©", "é"}, // é
	{"Ã­", "í"}, // í
	{"Ã³", "ó"}, // ó
	{"Ãº", "ú"}, // ú
	{"Ã", "Á"}, // Á
	{"Ã", "É"}, // É
	{"Ã", "Í"}, // Í
	{"Ã", "Ó"}, // Ó
	{"Ã", "Ú"}, // Ú
	{"Ã±", "ñ"}, // ñ
	{"Ã", "Ñ"}, // Ñ
}

const invalidChars = `/\?%*:|"<>`

// fallbackBase is used when sanitization leaves nothing of the name.
const fallbackBase = "downloaded_file"

// Sanitize cleans an original upload filename: repairs known mis-decoded
// accent sequences, strips characters illegal in filenames, collapses runs
// of whitespace, and guarantees the original extension survives. An empty
// result falls back to a generic name plus the original extension.
func Sanitize(filename string) string {
	name := filename
	for _, f := range mojibakeFixes {
		name = strings.ReplaceAll(name, f.bad, f.good)
	}

	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(invalidChars, r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	name = strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))

	ext := path.Ext(filename)
	if name == "" || name == ext {
		return fallbackBase + ext
	}
	if path.Ext(name) != ext {
		name += ext
	}
	return name
}
