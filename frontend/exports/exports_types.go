package exports

import "wmsadmin/frontend/shared/nav"

type TargetLink struct {
	ID    string
	Label string
}

type PageData struct {
	TopNav  nav.TopNavData
	Status  string
	Error   string
	Targets []TargetLink
	Runs    []ExportRun
}
