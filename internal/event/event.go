package event

type Type string

const (
	TypeFolderCreated  Type = "folder.created"
	TypeFolderRenamed  Type = "folder.renamed"
	TypeFolderDeleted  Type = "folder.deleted"
	TypeFileCreated    Type = "file.created"
	TypeFileUpdated    Type = "file.updated"
	TypeFileDeleted    Type = "file.deleted"
	TypeFilesReordered Type = "files.reordered"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
