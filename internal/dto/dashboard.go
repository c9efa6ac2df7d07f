package dto

// ── 仪表盘 DTO ──

// AdminStatsResponse 管理员统计
type AdminStatsResponse struct {
	TotalUsers          int64            `json:"total_users"`
	TotalAreas          int64            `json:"total_areas"`
	TotalRequests       int64            `json:"total_requests"`
	PendingRequests     int64            `json:"pending_requests"`
	UpcomingCollections int64            `json:"upcoming_collections"`
	RequestsByStatus    map[string]int64 `json:"requests_by_status"`
	RequestsByZone      map[string]int64 `json:"requests_by_zone"`
}

// UserStatsResponse 普通用户统计
// UpcomingCollections 为全局数量，不按用户区域过滤
type UserStatsResponse struct {
	PendingRequests     int64 `json:"pending_requests"`
	UpcomingCollections int64 `json:"upcoming_collections"`
}
