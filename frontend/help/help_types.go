package help

import (
	"wmsadmin/frontend/shared/nav"
	"wmsadmin/infrastructure/importer"
)

type PageData struct {
	TopNav    nav.TopNavData
	IsAdmin   bool
	CanImport bool
	Targets   []importer.ImportTargetSpec
}
