package launchsdk

import (
	"net/url"
	"strconv"
	"strings"
)

// LaunchFilter selects launches. Nil fields are left out of the query.
// Values are passed through as given; the remote service rejects bad ones.
type LaunchFilter struct {
	Count     *int
	ID        *int
	Including *string
	After     *string
	Before    *string
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// BuildLaunchQuery returns the launch list URL under root for f.
// Verbose mode is always requested since the parser reads verbose-only fields.
func BuildLaunchQuery(root string, f LaunchFilter) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(root, "/"))
	b.WriteString("/launch?mode=verbose")
	add := func(key, value string) {
		b.WriteString("&")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(url.QueryEscape(value))
	}
	if f.Count != nil {
		add("next", strconv.Itoa(*f.Count))
	}
	if f.Including != nil {
		add("name", *f.Including)
	}
	if f.ID != nil {
		add("id", strconv.Itoa(*f.ID))
	}
	if f.After != nil {
		add("startdate", *f.After)
	}
	if f.Before != nil {
		add("enddate", *f.Before)
	}
	return b.String()
}

func statusCodeURL(root string, code int) string {
	return strings.TrimRight(root, "/") + "/launchstatus/" + strconv.Itoa(code)
}

func lspURL(root, ref string) string {
	return strings.TrimRight(root, "/") + "/lsp/" + url.PathEscape(ref)
}
