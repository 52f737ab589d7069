package handler

const maxPageSize = 100

// normalizePage 补全分页参数，非法值回落到默认值
func normalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if defaultSize < 1 {
		defaultSize = 10
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultSize
	}
	return page, pageSize
}
