package domain

// Tag is a user-defined label. Tags exist independently of logs.
// Name is unique and compared case-sensitively after trimming.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// LogTag is the many-to-many association between logs and tags.
type LogTag struct {
	LogID string `json:"logId"`
	TagID string `json:"tagId"`
}
