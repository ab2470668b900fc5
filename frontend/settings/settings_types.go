package settings

import "wmsadmin/frontend/shared/nav"

type TargetSettingRow struct {
	TargetID       string
	Label          string
	BatchSize      int
	FallbackPolicy string
	Overridden     bool
}

type PageData struct {
	TopNav  nav.TopNavData
	Status  string
	Error   string
	Targets []TargetSettingRow
}
