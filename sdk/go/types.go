package launchsdk

import "time"

// isoLayout is the compact ISO-8601 form used by the isostart/isoend/isonet fields.
const isoLayout = "20060102T150405Z"

// LaunchEvent is one launch from a launch list response.
// Optional sub-records are nil when the source omitted them. List fields keep the
// difference in JSON output: null for a missing key, [] for an explicit null or empty list.
type LaunchEvent struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	VideoURLs []string        `json:"video_urls"`
	Window    LaunchWindow    `json:"window"`
	Status    LaunchStatus    `json:"status"`
	Rocket    *Rocket         `json:"rocket,omitempty"`
	Location  *LaunchLocation `json:"location,omitempty"`
	Missions  []Mission       `json:"missions"`
	LSP       *LSP            `json:"lsp,omitempty"`
}

// LaunchWindow carries the raw and ISO forms of the window bounds and the NET.
type LaunchWindow struct {
	Start    *string `json:"start,omitempty"`
	End      *string `json:"end,omitempty"`
	Net      *string `json:"net,omitempty"`
	ISOStart *string `json:"iso_start,omitempty"`
	ISOEnd   *string `json:"iso_end,omitempty"`
	ISONet   *string `json:"iso_net,omitempty"`
}

// StartTime parses ISOStart.
func (w LaunchWindow) StartTime() (time.Time, bool) { return parseISO(w.ISOStart) }

// EndTime parses ISOEnd.
func (w LaunchWindow) EndTime() (time.Time, bool) { return parseISO(w.ISOEnd) }

// NetTime parses ISONet.
func (w LaunchWindow) NetTime() (time.Time, bool) { return parseISO(w.ISONet) }

func parseISO(v *string) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(isoLayout, *v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LaunchStatus holds the hold/fail details of a launch and the resolved status text.
// Name and Description come from the launchstatus lookup for Code.
type LaunchStatus struct {
	Code        *int    `json:"code,omitempty"`
	HoldReason  *string `json:"hold_reason,omitempty"`
	FailReason  *string `json:"fail_reason,omitempty"`
	Changed     *string `json:"changed,omitempty"`
	InHold      *bool   `json:"in_hold,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Rocket is the launch vehicle and the agencies behind it.
type Rocket struct {
	ID            *int     `json:"id,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Configuration *string  `json:"configuration,omitempty"`
	FamilyName    *string  `json:"family_name,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	WikiURL       *string  `json:"wiki_url,omitempty"`
	Agencies      []Agency `json:"agencies"`
}

// Agency is an organization attached to a rocket or mission.
type Agency struct {
	ID           *int    `json:"id,omitempty"`
	Name         *string `json:"name,omitempty"`
	Abbreviation *string `json:"abbreviation,omitempty"`
	CountryCode  *string `json:"country_code,omitempty"`
	WikiURL      *string `json:"wiki_url,omitempty"`
}

// LSP is the launch service provider. It has the same shape as Agency.
type LSP Agency

// LaunchLocation is a launch site and its pads.
type LaunchLocation struct {
	ID          *int        `json:"id,omitempty"`
	Name        *string     `json:"name,omitempty"`
	CountryCode *string     `json:"country_code,omitempty"`
	Pads        []LaunchPad `json:"pads"`
}

// LaunchPad is a single pad at a location.
type LaunchPad struct {
	ID        *int     `json:"id,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Mission is a payload mission flown on a launch.
type Mission struct {
	ID          *int     `json:"id,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Type        *int     `json:"type,omitempty"`
	TypeName    *string  `json:"type_name,omitempty"`
	WikiURL     *string  `json:"wiki_url,omitempty"`
	Agencies    []Agency `json:"agencies"`
}
