package models

// FileObject — метаданные объекта в хранилище.
type FileObject struct {
	Identity
	Bucket          *string `db:"bucket" json:"bucket" validate:"required,max=80"`
	ObjectKey       *string `db:"object_key" json:"objectKey" validate:"required,max=255"`
	ContentType     *string `db:"content_type" json:"contentType" validate:"omitempty,max=120"`
	FileSize        *int64  `db:"file_size" json:"fileSize"`
	Checksum        *string `db:"checksum" json:"checksum" validate:"omitempty,max=64"`
	DurationSeconds *int32  `db:"duration_seconds" json:"durationSeconds"`
	Audit
}
