package parkmedia

import "testing"

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"987", false},
		{"abc-123", false},
		{"", true},
		{"   ", true},
		{"1/2", true},
		{"1?x=2", true},
		{"1#frag", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateID("device id", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("ValidateID(%q) error type = %v, want validation error", tt.id, err)
			}
		})
	}
}

func TestValidateIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{"one", []string{"1"}, false},
		{"several", []string{"1", "2", "3"}, false},
		{"none", nil, true},
		{"empty entry", []string{"1", ""}, true},
		{"comma", []string{"1,2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateIDs("asset id", tt.ids); (err != nil) != tt.wantErr {
				t.Errorf("ValidateIDs(%v) error = %v, wantErr %v", tt.ids, err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportDate(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"", false},
		{"2010-08-11", false},
		{"2010-8-11", true},
		{"11/08/2010", true},
		{"2010-02-30", true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if err := ValidateReportDate("start date", tt.date); (err != nil) != tt.wantErr {
				t.Errorf("ValidateReportDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAssetSummaryReport(t *testing.T) {
	tests := []struct {
		name     string
		req      AssetSummaryReportRequest
		wantErrs int
	}{
		{"ids only", AssetSummaryReportRequest{AssetIDs: []string{"1"}}, 0},
		{"full window", AssetSummaryReportRequest{AssetIDs: []string{"1"}, StartDate: "2010-08-11", EndDate: "2010-08-11"}, 0},
		{"reversed window", AssetSummaryReportRequest{AssetIDs: []string{"1"}, StartDate: "2010-08-12", EndDate: "2010-08-11"}, 1},
		{"nothing valid", AssetSummaryReportRequest{StartDate: "x", EndDate: "y"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateAssetSummaryReport(&tt.req)
			if len(errs) != tt.wantErrs {
				t.Errorf("got %d errors (%v), want %d", len(errs), errs, tt.wantErrs)
			}
		})
	}
}

func TestRequestPayloads(t *testing.T) {
	report := &AssetSummaryReportRequest{AssetIDs: []string{"12345", "45678"}, EndDate: "2010-08-11"}
	want := NewPayload(Pair{"assetIds", "12345,45678"}, Pair{"endDate", "2010-08-11"})
	if got := report.ToPayload(); !got.Equal(want) {
		t.Errorf("report ToPayload() = %s, want %s", got, want)
	}

	cmd := &DeviceCommandRequest{DeviceID: "987", Command: CommandReboot}
	wantCmd := NewPayload(Pair{"deviceId", "987"}, Pair{"command", "reboot"})
	if got := cmd.ToPayload(); !got.Equal(wantCmd) {
		t.Errorf("command ToPayload() = %s, want %s", got, wantCmd)
	}
}
