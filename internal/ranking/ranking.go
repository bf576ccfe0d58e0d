// Package ranking 把计数记录排成固定长度、分页后的排行榜。
//
// 输出的 Page 是纯数据，翻页交互由调用方（或 SessionManager）负责。
package ranking

import "strconv"

const (
	DefaultPageSize = 10

	BadgeVerified = "*"
	BadgePass     = "~"
)

var medals = [...]string{"🥇", "🥈", "🥉"}

// Record 排行输入，已经按计数倒序
type Record struct {
	Name     string
	Count    int64
	Verified bool
	HasPass  bool
}

// Entry 排行中的一行；占位行 Name 和 Count 为 nil
type Entry struct {
	Rank   int     `json:"rank"`
	Marker string  `json:"marker"`
	Name   *string `json:"name"`
	Count  *int64  `json:"count"`
	Badge  string  `json:"badge,omitempty"`
}

// Placeholder 是否为补位行
func (e Entry) Placeholder() bool {
	return e.Name == nil
}

type Page struct {
	Number  int     `json:"number"`
	Entries []Entry `json:"entries"`
}

// BuildPages 截断或补位到正好 limit 行，再按 pageSize 切页。
// limit 的合法范围由调用方校验。
func BuildPages(records []Record, limit, pageSize int) []Page {
	if limit <= 0 {
		return nil
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	entries := make([]Entry, limit)
	for i := range entries {
		rank := i + 1
		e := Entry{Rank: rank, Marker: marker(rank)}
		if i < len(records) {
			r := records[i]
			name, count := r.Name, r.Count
			e.Name = &name
			e.Count = &count
			e.Badge = badge(r)
		}
		entries[i] = e
	}

	pages := make([]Page, 0, (limit+pageSize-1)/pageSize)
	for start := 0; start < limit; start += pageSize {
		end := min(start+pageSize, limit)
		pages = append(pages, Page{
			Number:  len(pages) + 1,
			Entries: entries[start:end],
		})
	}
	return pages
}

// 前三名用奖牌，其余用名次数字
func marker(rank int) string {
	if rank >= 1 && rank <= len(medals) {
		return medals[rank-1]
	}
	return strconv.Itoa(rank)
}

// verified 优先于 pass
func badge(r Record) string {
	switch {
	case r.Verified:
		return BadgeVerified
	case r.HasPass:
		return BadgePass
	}
	return ""
}
