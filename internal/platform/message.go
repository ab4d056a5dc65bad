package platform

// Notice colors, matching the platform's embed palette.
const (
	ColorPrimary = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorError   = 0xED4245
	ColorAccent  = 0xFF73FA
)

// NoticeField is a labeled section of a structured notice.
type NoticeField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Notice is a structured message rendered by the platform.
type Notice struct {
	Title  string        `json:"title"`
	Body   string        `json:"body,omitempty"`
	Fields []NoticeField `json:"fields,omitempty"`
	Color  int           `json:"color,omitempty"`
}

// Widget enumerates the interactive components the platform can attach to a
// message. The set is closed; the bot never composes widgets dynamically.
type Widget string

const (
	WidgetNone           Widget = ""
	WidgetCategorySelect Widget = "category_select"
	WidgetCloseButton    Widget = "close_button"
	WidgetCloseConfirm   Widget = "close_confirm"
	WidgetRatingSelect   Widget = "rating_select"
	WidgetCommentInput   Widget = "comment_input"
)

// File is an attachment delivered alongside a notice.
type File struct {
	Name     string `json:"name"`
	Contents []byte `json:"contents"`
}

// Message bundles what the bot sends through the platform boundary.
type Message struct {
	Notice Notice `json:"notice"`
	Widget Widget `json:"widget,omitempty"`
	File   *File  `json:"file,omitempty"`
}
