package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/parkmedia/kmmctl/internal/parkmedia"
)

// invocation carries everything a command handler may need
type invocation struct {
	client   *parkmedia.Client
	args     any // decoded --method-arguments, nil when absent
	username string
	password string
}

type handler func(ctx context.Context, inv *invocation) (parkmedia.Result, error)

// command is one entry of the method table
type command struct {
	name    string
	args    string // argument shape shown by 'kmmctl methods'
	summary string
	run     handler
}

var commandTable = []command{
	{"login", `{"username":..,"password":..}`, "Log in and print the session cookie", runLogin},
	{"devices", "", "List devices", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		return inv.client.Devices(ctx)
	}},
	{"device", `ID | {"id":ID}`, "Show one device", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		id, err := idArg(inv.args, "id", "device_id")
		if err != nil {
			return nil, err
		}
		return inv.client.Device(ctx, id)
	}},
	{"device_screenshot", `ID | {"id":ID}`, "Fetch the latest screenshot of a device", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		id, err := idArg(inv.args, "id", "device_id")
		if err != nil {
			return nil, err
		}
		return inv.client.DeviceScreenshot(ctx, id)
	}},
	{"device_command_send", `{"device_id":ID,"command":NAME} | [ID,NAME]`, "Queue a command for a device", runDeviceCommandSend},
	{"device_command_retrieve", `ID | {"id":ID}`, "Show the state of a device command", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		id, err := idArg(inv.args, "id", "device_command_id")
		if err != nil {
			return nil, err
		}
		return inv.client.DeviceCommandRetrieve(ctx, id)
	}},
	{"device_groups", "", "List device groups", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		return inv.client.DeviceGroups(ctx)
	}},
	{"assets", "", "List assets", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		return inv.client.Assets(ctx)
	}},
	{"asset", `ID | {"id":ID}`, "Show one asset", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		id, err := idArg(inv.args, "id", "asset_id")
		if err != nil {
			return nil, err
		}
		return inv.client.Asset(ctx, id)
	}},
	{"asset_create", `{"assetType":..,"assetName":..,...}`, "Create an asset from form fields", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		fields, err := fieldsArg(inv.args)
		if err != nil {
			return nil, err
		}
		return inv.client.AssetCreate(ctx, fields)
	}},
	{"asset_edit", `{"asset_id":ID,"assetName":..,"metadata":{..}}`, "Update an asset", runAssetEdit},
	{"content_scheduler", `[ID,..] | {"device_ids":[ID,..]}`, "Rebuild schedules for devices", func(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
		ids, err := idListArg(inv.args, "device_ids", "device_id", "deviceIds")
		if err != nil {
			return nil, err
		}
		return inv.client.ContentScheduler(ctx, ids)
	}},
	{"asset_summary_report", `{"asset_ids":[ID,..],"start_date":"YYYY-MM-DD","end_date":"YYYY-MM-DD"}`, "Run the asset summary report", runAssetSummaryReport},
}

// lookupCommand finds a table entry by name
func lookupCommand(name string) (*command, error) {
	for i := range commandTable {
		if commandTable[i].name == name {
			return &commandTable[i], nil
		}
	}
	return nil, parkmedia.NewConfigError(fmt.Sprintf("unknown method %q; valid methods: %s", name, strings.Join(commandNames(), ", ")))
}

func commandNames() []string {
	names := make([]string, 0, len(commandTable))
	for _, c := range commandTable {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// parseArguments decodes --method-arguments. Objects and arrays must be
// valid JSON; other JSON scalars are decoded; anything else is taken as a
// bare string.
func parseArguments(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		v, err := parkmedia.DecodeJSONValue([]byte(trimmed))
		if err != nil {
			return nil, parkmedia.NewConfigError(fmt.Sprintf("--method-arguments is not valid JSON: %v", err))
		}
		return v, nil
	}
	if v, err := parkmedia.DecodeJSONValue([]byte(trimmed)); err == nil {
		return v, nil
	}
	return trimmed, nil
}

func argError(format string, a ...any) error {
	return parkmedia.NewValidationError(fmt.Sprintf(format, a...))
}

func scalarArg(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// idArg accepts ID, [ID] or an object holding the id under one of keys (or
// as its only value).
func idArg(args any, keys ...string) (string, error) {
	switch t := args.(type) {
	case nil:
		return "", argError("an id argument is required")
	case *parkmedia.Payload:
		for _, k := range keys {
			if v, ok := t.Get(k); ok {
				return idArg(v, keys...)
			}
		}
		if t.Len() == 1 {
			v, _ := t.Get(t.Keys()[0])
			return idArg(v, keys...)
		}
		return "", argError("expected one of %s in the arguments object", strings.Join(keys, ", "))
	case []any:
		if len(t) != 1 {
			return "", argError("expected a single id, got %d values", len(t))
		}
		return idArg(t[0], keys...)
	default:
		if s, ok := scalarArg(t); ok {
			return s, nil
		}
		return "", argError("unsupported id argument %v", args)
	}
}

// idListArg accepts [ID,..], "ID,ID", ID or an object holding any of those
// under one of keys (or as its only value).
func idListArg(args any, keys ...string) ([]string, error) {
	switch t := args.(type) {
	case nil:
		return nil, argError("at least one id is required")
	case *parkmedia.Payload:
		for _, k := range keys {
			if v, ok := t.Get(k); ok {
				return idListArg(v, keys...)
			}
		}
		if t.Len() == 1 {
			v, _ := t.Get(t.Keys()[0])
			return idListArg(v, keys...)
		}
		return nil, argError("expected one of %s in the arguments object", strings.Join(keys, ", "))
	case []any:
		ids := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := scalarArg(item)
			if !ok {
				return nil, argError("unsupported id %v", item)
			}
			ids = append(ids, s)
		}
		return ids, nil
	default:
		s, ok := scalarArg(t)
		if !ok {
			return nil, argError("unsupported id list %v", args)
		}
		var ids []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
		return ids, nil
	}
}

// fieldsArg requires a JSON object
func fieldsArg(args any) (*parkmedia.Payload, error) {
	p, ok := args.(*parkmedia.Payload)
	if !ok {
		return nil, argError("expected a JSON object of fields")
	}
	return p, nil
}

func stringField(p *parkmedia.Payload, keys ...string) string {
	for _, k := range keys {
		if v, ok := p.Get(k); ok {
			if s, ok := scalarArg(v); ok {
				return s
			}
		}
	}
	return ""
}

func runLogin(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
	username, password := inv.username, inv.password
	if p, ok := inv.args.(*parkmedia.Payload); ok {
		if u := stringField(p, "username"); u != "" {
			username = u
		}
		if pw := stringField(p, "password"); pw != "" {
			password = pw
		}
	}

	cookie, err := inv.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if cookie == "" {
		return inv.client.LastResult(), nil
	}
	return parkmedia.RawResult{Body: []byte(cookie)}, nil
}

func runDeviceCommandSend(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
	var deviceID, cmd string
	switch t := inv.args.(type) {
	case *parkmedia.Payload:
		deviceID = stringField(t, "device_id", "deviceId", "id")
		cmd = stringField(t, "command")
	case []any:
		if len(t) != 2 {
			return nil, argError("expected [device_id, command], got %d values", len(t))
		}
		deviceID, _ = scalarArg(t[0])
		cmd, _ = scalarArg(t[1])
	default:
		return nil, argError(`expected {"device_id":ID,"command":NAME}`)
	}
	return inv.client.DeviceCommandSend(ctx, deviceID, cmd)
}

func runAssetEdit(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
	fields, err := fieldsArg(inv.args)
	if err != nil {
		return nil, err
	}
	fields = fields.Clone()

	var assetID string
	for _, k := range []string{"asset_id", "assetId"} {
		if v, ok := fields.Delete(k); ok {
			assetID, _ = scalarArg(v)
			break
		}
	}
	if assetID == "" {
		return nil, argError("asset_id is a required argument")
	}
	return inv.client.AssetEdit(ctx, assetID, fields)
}

func runAssetSummaryReport(ctx context.Context, inv *invocation) (parkmedia.Result, error) {
	req := &parkmedia.AssetSummaryReportRequest{}
	switch t := inv.args.(type) {
	case *parkmedia.Payload:
		for _, k := range []string{"asset_ids", "asset_id", "assetIds"} {
			if v, ok := t.Get(k); ok {
				ids, err := idListArg(v)
				if err != nil {
					return nil, err
				}
				req.AssetIDs = ids
				break
			}
		}
		req.StartDate = stringField(t, "start_date", "startDate")
		req.EndDate = stringField(t, "end_date", "endDate")
	default:
		ids, err := idListArg(t)
		if err != nil {
			return nil, err
		}
		req.AssetIDs = ids
	}
	return inv.client.AssetSummaryReport(ctx, req)
}
