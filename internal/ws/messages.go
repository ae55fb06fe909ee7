package ws

import "github.com/lanyardhq/lanyard/internal/models"

type MsgType string

const (
	MsgSnapshot    MsgType = "snapshot"
	MsgNoteAdded   MsgType = "note_added"
	MsgNoteUpdated MsgType = "note_updated"
	MsgNoteRemoved MsgType = "note_removed"
	MsgScanDone    MsgType = "scan_done"
	MsgCheckDone   MsgType = "check_done"
)

type WSMessage struct {
	Type    MsgType `json:"type"`
	Payload any     `json:"payload"`
}

// SnapshotPayload is sent once to each client on connect.
type SnapshotPayload struct {
	NoteCount  int   `json:"noteCount"`
	LastScanAt int64 `json:"lastScanAt,omitempty"`
}

// NotePayload accompanies note_added and note_updated events.
type NotePayload struct {
	Note *models.Note `json:"note"`
}

// RemovedPayload accompanies note_removed events.
type RemovedPayload struct {
	RelPath string `json:"relPath"`
}
