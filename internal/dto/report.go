package dto

// ReportExportQuery selects the export format.
type ReportExportQuery struct {
	Format string `form:"format"`
}
