package dataimport

import (
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/importer"
)

type TargetOption struct {
	ID       string
	Label    string
	Selected bool
}

type PageData struct {
	TopNav  nav.TopNavData
	Status  string
	Error   string
	Targets []TargetOption
	Runs    []RunRecord
}

type PreviewData struct {
	TopNav    nav.TopNavData
	Status    string
	Error     string
	Session   *importer.Session
	Counts    map[importer.RowStatus]int
	CanUpload bool
}
