// internal/domain/models/file.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File types. The two *_link types represent external URLs; everything else
// is backed by an object in the storage provider.
const (
	FileTypePDF         = "pdf"
	FileTypeWord        = "word"
	FileTypeImage       = "image"
	FileTypeExcel       = "excel"
	FileTypePPTX        = "pptx"
	FileTypeVideo       = "video"
	FileTypeAudio       = "audio"
	FileTypeVideoLink   = "video_link"
	FileTypeGenericLink = "generic_link"
	FileTypeOther       = "other"
)

// ValidFileType reports whether t is a known file type value.
func ValidFileType(t string) bool {
	switch t {
	case FileTypePDF, FileTypeWord, FileTypeImage, FileTypeExcel, FileTypePPTX,
		FileTypeVideo, FileTypeAudio, FileTypeVideoLink, FileTypeGenericLink,
		FileTypeOther:
		return true
	}
	return false
}

// IsLinkType reports whether t represents an external link rather than an
// uploaded binary.
func IsLinkType(t string) bool {
	return t == FileTypeVideoLink || t == FileTypeGenericLink
}

// File is a metadata record for an uploaded asset or an external link.
//
// Exactly one of StorageID / SecureURL-as-external-link applies: binary-backed
// types carry the provider object id and a non-zero size; link types carry
// the external URL and size 0.
type File struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Filename    string             `bson:"filename" json:"filename"`
	Description string             `bson:"description" json:"description"`
	FileType    string             `bson:"file_type" json:"file_type"`

	StorageID string `bson:"storage_id,omitempty" json:"storage_id,omitempty"`
	SecureURL string `bson:"secure_url" json:"secure_url"`
	Size      int64  `bson:"size" json:"size"`

	Folder        primitive.ObjectID   `bson:"folder" json:"folder"`
	Tags          []primitive.ObjectID `bson:"tags" json:"tags"`
	UploadedBy    primitive.ObjectID   `bson:"uploaded_by" json:"uploaded_by"`
	AssignedGroup *primitive.ObjectID  `bson:"assigned_group" json:"assigned_group"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FileView is the read-side projection returned by listings: referenced ids
// are joined into display fields after the permission filter has been applied.
type FileView struct {
	File       `bson:",inline"`
	Uploader   UserRef   `bson:"uploader" json:"uploader"`
	TagRefs    []TagRef  `bson:"tag_refs" json:"tag_refs"`
	GroupRef   *GroupRef `bson:"group_ref,omitempty" json:"group_ref,omitempty"`
}
