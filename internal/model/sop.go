package model

import "time"

// SOPDocument 标准作业程序文件，文件本体存放在外部图床/文件服务，这里只存 URL
type SOPDocument struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Version     string    `json:"version"`
	FileURL     string    `json:"file_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
