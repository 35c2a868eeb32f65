package reports

import "fmt"

// NewReportGenerator creates a report generator based on the report type.
func NewReportGenerator(reportType ReportType) (Generator, error) {
	switch reportType {
	case ReportTypeNodes:
		return &NodeReport{}, nil
	case ReportTypeEdges:
		return &EdgeReport{}, nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}
