package model

import "time"

type Personnel struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // 工地主任 / 质检 / 安全员 / 技术员
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	LicenseNo string    `json:"license_no"`
	PhotoURL  string    `json:"photo_url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
