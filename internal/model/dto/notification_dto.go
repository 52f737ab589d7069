package dto

// NotificationInfo 通知信息
type NotificationInfo struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	ReadAt    string `json:"read_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NotificationListQuery 通知列表查询参数
type NotificationListQuery struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

// MarkAllReadResponse 批量已读结果
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
