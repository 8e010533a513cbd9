package parkmedia

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Login posts the credentials and, on HTTP 200, stores the Set-Cookie value
// as the session cookie and returns it. Any existing cookie is cleared first.
//
// A rejected login is not an error: the returned cookie is "" and the
// server's answer is available through LastResponse and LastResult.
//
//	POST {base}/Login
//	Content-Type: application/x-www-form-urlencoded
//
//	username=foo&password=bar
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	c.SetCookie("")

	data := NewPayload()
	if username != "" {
		data.Set("username", username)
	}
	if password != "" {
		data.Set("password", password)
	}

	if _, err := c.PostForm(ctx, "Login", data, nil); err != nil {
		// The body of a failed login may not parse; the status is what matters
		if !IsParseError(err) || c.response == nil {
			return "", err
		}
	}

	if c.response == nil || c.response.StatusCode != http.StatusOK {
		status := 0
		if c.response != nil {
			status = c.response.StatusCode
		}
		c.transport.logger().Info("Login rejected", zap.String("username", username), zap.Int("status", status))
		return "", nil
	}

	cookie := strings.Join(c.response.Header.Values("Set-Cookie"), ", ")
	if cookie == "" {
		c.transport.logger().Warn("Login succeeded without a Set-Cookie header", zap.String("username", username))
		return "", nil
	}
	c.SetCookie(cookie)
	c.transport.logger().Info("Logged in", zap.String("username", username), zap.String("server", c.transport.String()))
	return cookie, nil
}

// Devices lists all devices
//
//	GET {base}/Devices
func (c *Client) Devices(ctx context.Context) (Result, error) {
	return c.Get(ctx, "Devices", nil)
}

// Device returns one device
//
//	GET {base}/Devices/{id}
func (c *Client) Device(ctx context.Context, id string) (Result, error) {
	if err := ValidateID("device id", id); err != nil {
		return nil, err
	}
	return c.Get(ctx, "Devices/"+id, nil)
}

// DeviceScreenshot returns the latest screenshot of a device
//
//	GET {base}/DevicesScreenshot/{id}
func (c *Client) DeviceScreenshot(ctx context.Context, id string) (Result, error) {
	if err := ValidateID("device id", id); err != nil {
		return nil, err
	}
	return c.Get(ctx, "DevicesScreenshot/"+id, nil)
}

// DeviceCommandSend queues a command for a device
//
//	POST {base}/DeviceCommand
//
//	deviceId=987&command=uploadScreenshot
func (c *Client) DeviceCommandSend(ctx context.Context, deviceID, command string) (Result, error) {
	if err := ValidateID("device id", deviceID); err != nil {
		return nil, err
	}
	if err := ValidateCommand(command); err != nil {
		return nil, err
	}
	req := &DeviceCommandRequest{DeviceID: deviceID, Command: command}
	return c.PostForm(ctx, "DeviceCommand", req.ToPayload(), nil)
}

// DeviceCommandRetrieve returns the state of a queued command
//
//	GET {base}/DeviceCommand/{id}
func (c *Client) DeviceCommandRetrieve(ctx context.Context, commandID string) (Result, error) {
	if err := ValidateID("device command id", commandID); err != nil {
		return nil, err
	}
	return c.Get(ctx, "DeviceCommand/"+commandID, nil)
}

// DeviceGroups lists device groups
//
//	GET {base}/DeviceGroups
func (c *Client) DeviceGroups(ctx context.Context) (Result, error) {
	return c.Get(ctx, "DeviceGroups", nil)
}

// Assets lists assets
//
//	GET {base}/Assets
func (c *Client) Assets(ctx context.Context) (Result, error) {
	return c.Get(ctx, "Assets", nil)
}

// Asset returns one asset
//
//	GET {base}/Asset/{id}
func (c *Client) Asset(ctx context.Context, id string) (Result, error) {
	if err := ValidateID("asset id", id); err != nil {
		return nil, err
	}
	return c.Get(ctx, "Asset/"+id, nil)
}

// AssetCreate uploads a new asset. Fields are sent as given, e.g.
// assetType, assetName, assetFileExtension, assetFileData.
//
//	POST {base}/Asset
func (c *Client) AssetCreate(ctx context.Context, fields *Payload) (Result, error) {
	if fields.Len() == 0 {
		return nil, NewValidationError("asset fields cannot be empty")
	}
	return c.PostForm(ctx, "Asset", fields, nil)
}

// AssetEdit updates an asset. Fields are written as kdata XML; a
// "metadata" (or "asset-metadata") mapping becomes named metadata entries.
//
//	PUT {base}/Asset/{id}
//	Content-Type: text/xml
func (c *Client) AssetEdit(ctx context.Context, assetID string, fields *Payload) (Result, error) {
	if err := ValidateID("asset id", assetID); err != nil {
		return nil, err
	}
	body, err := EncodeAssetEditXML(fields)
	if err != nil {
		return nil, err
	}
	return c.Put(ctx, "Asset/"+assetID, body, http.Header{"Content-Type": {ContentTypeXML}})
}

// ContentScheduler asks the server to rebuild schedules for devices
//
//	POST {base}/ContentSchedule
//
//	deviceIds=12345,45678,78965
func (c *Client) ContentScheduler(ctx context.Context, deviceIDs []string) (Result, error) {
	if err := ValidateIDs("device id", deviceIDs); err != nil {
		return nil, err
	}
	data := NewPayload(Pair{"deviceIds", strings.Join(deviceIDs, ",")})
	return c.PostForm(ctx, "ContentSchedule", data, nil)
}

// AssetSummaryReport runs the asset summary report
//
//	POST {base}/AssetSummaryReport
//
//	assetIds=12345,45678&startDate=2010-08-11&endDate=2010-08-11
func (c *Client) AssetSummaryReport(ctx context.Context, req *AssetSummaryReportRequest) (Result, error) {
	if errs := ValidateAssetSummaryReport(req); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c.PostForm(ctx, "AssetSummaryReport", req.ToPayload(), nil)
}
