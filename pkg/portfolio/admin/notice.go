package admin

import "time"

// NoticeTTL is how long a success notice stays visible.
const NoticeTTL = 3 * time.Second

const (
	msgSettingsSaved = "Settings saved successfully!"
	msgItemsSaved    = "Items saved successfully!"
	msgItemDeleted   = "Item deleted successfully!"
)

// NoticeKind distinguishes transient success notices from error banners.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the message shown above the editor.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// Expired reports whether a success notice has outlived NoticeTTL. Error
// banners stay until dismissed.
func (n Notice) Expired(now time.Time) bool {
	return n.Kind == NoticeSuccess && now.Sub(n.At) >= NoticeTTL
}
