package domain

// CandidateEntry 是站点搜索结果中的一条候选（选择前的临时数据）。
type CandidateEntry struct {
	Title string
	URL   string // 绝对或站内相对路径
	Meta  string // 卡片上的附加文本（年份/画质等），可能为空

	// YearHint 是结构化结果里直接给出的年份（JSON 搜索接口才有），0 表示没有。
	YearHint int
	// ID 是站点给出的目录 ID（例如 tmdb_id），用于与查询 ID 交叉校验；可能为空。
	ID string
}

// SelectedMatch 是匹配阶段选出的唯一条目；不存在即意味着本次调用没有输出。
type SelectedMatch struct {
	URL   string // 绝对 URL
	Title string
}

// RawLink 是详情页中被判定为下载/播放链接的锚点。
type RawLink struct {
	Href string // 已按详情页 URL 解析为绝对地址
	Text string // 锚点可见文本（原样保留，匹配时再做大小写折叠）
}

// ResolvedLink 是最多跟随一次重定向后的链接，附带产生它的 RawLink（用于画质/大小提取）。
type ResolvedLink struct {
	URL  string
	Link RawLink
}
