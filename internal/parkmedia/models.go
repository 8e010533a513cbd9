package parkmedia

import "strings"

// Device commands accepted by POST DeviceCommand
const (
	CommandUploadScreenshot = "uploadScreenshot"
	CommandRestart          = "restart"
	CommandReboot           = "reboot"
	CommandSendLogs         = "sendLogs"
)

// Asset types accepted by POST Asset (assetType field)
const (
	AssetTypeImage = "Image"
	AssetTypeVideo = "Video"
	AssetTypeFlash = "Flash"
	AssetTypeHTML  = "Html"
)

// ReportDateLayout is the date format used by the report endpoints
const ReportDateLayout = "2006-01-02"

// AssetSummaryReportRequest selects the assets and optional date window
// for POST AssetSummaryReport.
type AssetSummaryReportRequest struct {
	AssetIDs  []string // Sent as assetIds, comma joined
	StartDate string   // YYYY-MM-DD, optional
	EndDate   string   // YYYY-MM-DD, optional
}

// ToPayload returns the form fields for the report request
func (r *AssetSummaryReportRequest) ToPayload() *Payload {
	p := NewPayload(Pair{"assetIds", strings.Join(r.AssetIDs, ",")})
	if r.StartDate != "" {
		p.Set("startDate", r.StartDate)
	}
	if r.EndDate != "" {
		p.Set("endDate", r.EndDate)
	}
	return p
}

// DeviceCommandRequest is the form body of POST DeviceCommand
type DeviceCommandRequest struct {
	DeviceID string
	Command  string
}

// ToPayload returns the form fields for the command request
func (r *DeviceCommandRequest) ToPayload() *Payload {
	return NewPayload(
		Pair{"deviceId", r.DeviceID},
		Pair{"command", r.Command},
	)
}
