package constant

// Attribute keys for slog.
const (
	Error       = "error"
	InterviewID = "interview_id"
	RoomName    = "room_name"
	Identity    = "identity"
	Topic       = "topic"
)
