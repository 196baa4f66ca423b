package domain

// TagCount is a tag ranked by how many logs carry it.
type TagCount struct {
	Tag
	Count int `json:"count"`
}

// DayCount is the number of entries on one local calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats summarises activity for one timezone at one instant.
type Stats struct {
	TodayCount int        `json:"todayCount"`
	WeekCount  int        `json:"weekCount"`
	RecentURLs []string   `json:"recentUrls"`
	TopTags    []TagCount `json:"topTags"`
	MonthDays  []DayCount `json:"monthDays,omitempty"`
}
