// Package bridge carries the structured commands exchanged between the editor
// panel and the host process that owns the document.
//
// Outbound messages ask the host to show a message box, copy text to the
// clipboard, or apply (and optionally save) new CSV content. Inbound messages
// deliver fresh document content or relay the host's apply buttons.
package bridge

// Commands sent to the host.
const (
	CommandMsgBox          = "msgBox"
	CommandCopyToClipboard = "copyToClipboard"
	CommandApply           = "apply"
)

// Commands received from the host.
const (
	CommandCSVUpdate         = "csvUpdate"
	CommandApplyPress        = "applyPress"
	CommandApplyAndSavePress = "applyAndSavePress"
)

// MsgBoxType selects the severity of a host message box.
type MsgBoxType string

const (
	MsgBoxInfo  MsgBoxType = "info"
	MsgBoxWarn  MsgBoxType = "warn"
	MsgBoxError MsgBoxType = "error"
)

// Outbound is a message addressed to the host.
type Outbound interface {
	HostCommand() string
}

// MsgBox asks the host to display content.
type MsgBox struct {
	Command string     `json:"command"`
	Type    MsgBoxType `json:"type"`
	Content string     `json:"content"`
}

func (m MsgBox) HostCommand() string { return m.Command }

// CopyToClipboard asks the host to place text on the system clipboard.
type CopyToClipboard struct {
	Command string `json:"command"`
	Text    string `json:"text"`
}

func (m CopyToClipboard) HostCommand() string { return m.Command }

// Apply hands the serialized table back to the host.
type Apply struct {
	Command        string `json:"command"`
	CSVContent     string `json:"csvContent"`
	SaveSourceFile bool   `json:"saveSourceFile"`
}

func (m Apply) HostCommand() string { return m.Command }

// NewMsgBox builds a msgBox message.
func NewMsgBox(typ MsgBoxType, content string) MsgBox {
	return MsgBox{Command: CommandMsgBox, Type: typ, Content: content}
}

// NewCopyToClipboard builds a copyToClipboard message.
func NewCopyToClipboard(text string) CopyToClipboard {
	return CopyToClipboard{Command: CommandCopyToClipboard, Text: text}
}

// NewApply builds an apply message.
func NewApply(csvContent string, saveSourceFile bool) Apply {
	return Apply{Command: CommandApply, CSVContent: csvContent, SaveSourceFile: saveSourceFile}
}

// Inbound is a message received from the host. CSVContent is only set for
// csvUpdate.
type Inbound struct {
	Command    string `json:"command"`
	CSVContent string `json:"csvContent,omitempty"`
}
