package dto

// TaskSnapshotReq 手动触发快照请求
type TaskSnapshotReq struct {
	// Day 快照日期，YYYY-MM-DD
	Day string `json:"day" binding:"required"`
}
