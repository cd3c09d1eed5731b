// Package archive implements the ingestion pipeline and the background
// subsystems that keep the video store consistent: content-hash dedup,
// web transcoding, thumbnail extraction, whisper transcription, the
// filesystem reconciliation sweep and zip export.
package archive

import "fmt"

// FileStatus is the per-file outcome reported for one entry of an upload
// batch. One file's failure never aborts its siblings.
type FileStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	VideoID string `json:"video_id,omitempty"`
}

const (
	statusUploaded  = "Uploaded"
	statusDuplicate = "Duplicate detected"
)

func uploadedStatus(name, videoID string) FileStatus {
	return FileStatus{Name: name, Status: statusUploaded, VideoID: videoID}
}

func duplicateStatus(name string) FileStatus {
	return FileStatus{Name: name, Status: statusDuplicate}
}

func failedStatus(name, reason string) FileStatus {
	return FileStatus{Name: name, Status: fmt.Sprintf("Failed: %s", reason)}
}
