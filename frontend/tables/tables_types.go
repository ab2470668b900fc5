package tables

import (
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/importer"
)

type TargetTab struct {
	ID     string
	Label  string
	Active bool
}

type RowView struct {
	ID    string
	Cells []string
}

type PageData struct {
	TopNav    nav.TopNavData
	Status    string
	Error     string
	Target    importer.ImportTargetSpec
	Tabs      []TargetTab
	Columns   []string
	Rows      []RowView
	CanDelete bool
}
