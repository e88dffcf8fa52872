// Package qr parses asset label payloads and renders them as QR codes.
//
// A payload is the fixed, newline separated text produced by the inventory
// agent:
//
//	DOMAIN:CORP
//	BRAND:Dell
//	...
//	DISK:476.9
//
// Its values are validated with the same rules as inventory entries and
// re-encoded as canonical JSON before rendering.
package qr

import (
	"fmt"
	"regexp"

	"github.com/goccy/go-json"
	qrcode "github.com/skip2/go-qrcode"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/validation"
)

// ImageSize is the width and height of rendered codes in pixels
const ImageSize = 256

var payloadPattern = regexp.MustCompile(`^DOMAIN:([^\r\n]+)\nBRAND:([^\r\n]+)\nMODEL:([^\r\n]+)\nSERIALNUMBER:([^\r\n]+)\nWINDOWSVERSION:([^\r\n]+)\nWINDOWSBUILD:([^\r\n]+)\nWINDOWSRELEASE:([^\r\n]+)\nCPUMODEL:([^\r\n]+)\nCPUSPEED:([^\r\n]+)\nCPUCORES:([^\r\n]+)\nRAM:([^\r\n]+)\nDISK:([^\r\n]+)\n?$`)

// payloadFields are the fields captured by payloadPattern, in group order
var payloadFields = []models.Field{
	models.FieldDomain,
	models.FieldBrand,
	models.FieldModel,
	models.FieldSerial,
	models.FieldWindowsVersion,
	models.FieldWindowsBuild,
	models.FieldWindowsRelease,
	models.FieldCPU,
	models.FieldClockSpeed,
	models.FieldCPUCores,
	models.FieldRAM,
	models.FieldDisk,
}

// Label is the canonical, ordered form of a payload
type Label struct {
	Domain         string  `json:"domain"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	Serial         string  `json:"serial"`
	WindowsVersion string  `json:"windowsVersion"`
	WindowsBuild   string  `json:"windowsBuild"`
	WindowsRelease string  `json:"windowsRelease"`
	CPU            string  `json:"cpu"`
	ClockSpeed     int64   `json:"clockSpeed"`
	CPUCores       int64   `json:"cpuCores"`
	RAM            int64   `json:"ram"`
	Disk           float64 `json:"disk"`
}

// Parse validates payload and returns its label. path names the payload in
// error messages.
func Parse(payload, path string) (*Label, error) {
	m := payloadPattern.FindStringSubmatch(payload)
	if m == nil {
		return nil, apperr.Validation(path, path+" fails to match the required pattern")
	}

	values := make(map[models.Field]string, len(payloadFields))
	for i, f := range payloadFields {
		values[f] = m[i+1]
	}
	e, err := validation.DecodeEntryText(values, payloadFields)
	if err != nil {
		return nil, err
	}

	return &Label{
		Domain:         e.Domain,
		Brand:          e.Brand,
		Model:          e.Model,
		Serial:         e.Serial,
		WindowsVersion: e.WindowsVersion,
		WindowsBuild:   e.WindowsBuild,
		WindowsRelease: e.WindowsRelease,
		CPU:            e.CPU,
		ClockSpeed:     e.ClockSpeed,
		CPUCores:       e.CPUCores,
		RAM:            e.RAM,
		Disk:           e.Disk,
	}, nil
}

// JSON returns the canonical encoding embedded in the code
func (l *Label) JSON() ([]byte, error) {
	return json.Marshal(l)
}

// Render encodes the label as a two-colour ImageSize x ImageSize PNG
func (l *Label) Render() ([]byte, error) {
	content, err := l.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode label: %w", err)
	}
	code, err := qrcode.New(string(content), qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("build qr code: %w", err)
	}
	png, err := code.PNG(ImageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}
