package adminusers

import (
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/audit"
)

type UserView struct {
	ID          int64  `bun:"id"`
	Username    string `bun:"username"`
	Role        string `bun:"role"`
	CreatedAt   string `bun:"created_at"`
	ImportCount int    `bun:"import_count"`
}

type PageData struct {
	TopNav       nav.TopNavData
	Users        []UserView
	Roles        []string
	RoleCodes    map[string][]string
	Activity     []audit.Entry
	Status       string
	ErrorMessage string
}
