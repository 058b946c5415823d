package agent

// Event is one incremental output produced while a turn is running. The
// session controller consumes events and renders them as they arrive.
type Event interface {
	isEvent()
}

// ThinkingNote carries intermediate assistant text emitted alongside tool
// calls.
type ThinkingNote struct {
	Text string
}

// ToolCallAnnounced signals that the model requested a tool invocation.
type ToolCallAnnounced struct {
	Tool string
	Args string
}

// ToolResultPreview carries a truncated view of a tool result.
type ToolResultPreview struct {
	Tool    string
	Preview string
	IsError bool
}

// AnswerFragment is a streamed chunk of assistant answer text.
type AnswerFragment struct {
	Text string
}

func (ThinkingNote) isEvent()      {}
func (ToolCallAnnounced) isEvent() {}
func (ToolResultPreview) isEvent() {}
func (AnswerFragment) isEvent()    {}

// previewLimit bounds tool-result previews shown in the UI.
const previewLimit = 300

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
