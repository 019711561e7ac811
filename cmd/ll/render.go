package main

import (
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	launchsdk "launchline/sdk/go"
)

func renderLaunches(w io.Writer, launches []launchsdk.LaunchEvent, now time.Time) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Name", "NET", "When", "Status", "LSP"})
	for _, ev := range launches {
		tw.AppendRow(table.Row{ev.ID, ev.Name, netText(ev.Window), relative(ev.Window, now), deref(ev.Status.Name), lspText(ev.LSP)})
	}
	tw.Render()
}

func renderLaunch(w io.Writer, ev launchsdk.LaunchEvent, now time.Time) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(ev.Name)
	tw.AppendRow(table.Row{"ID", ev.ID})
	tw.AppendRow(table.Row{"NET", netText(ev.Window)})
	tw.AppendRow(table.Row{"When", relative(ev.Window, now)})
	tw.AppendRow(table.Row{"Window", deref(ev.Window.Start) + " / " + deref(ev.Window.End)})
	tw.AppendRow(table.Row{"Status", deref(ev.Status.Name)})
	if ev.Status.HoldReason != nil {
		tw.AppendRow(table.Row{"Hold reason", *ev.Status.HoldReason})
	}
	if ev.Status.FailReason != nil {
		tw.AppendRow(table.Row{"Fail reason", *ev.Status.FailReason})
	}
	if ev.Rocket != nil {
		tw.AppendRow(table.Row{"Rocket", deref(ev.Rocket.Name)})
	}
	if ev.Location != nil {
		pads := make([]string, 0, len(ev.Location.Pads))
		for _, p := range ev.Location.Pads {
			pads = append(pads, deref(p.Name))
		}
		loc := deref(ev.Location.Name)
		if len(pads) > 0 {
			loc += " (" + strings.Join(pads, ", ") + ")"
		}
		tw.AppendRow(table.Row{"Location", loc})
	}
	for _, m := range ev.Missions {
		tw.AppendRow(table.Row{"Mission", deref(m.Name)})
	}
	tw.AppendRow(table.Row{"LSP", lspText(ev.LSP)})
	if len(ev.VideoURLs) > 0 {
		tw.AppendRow(table.Row{"Video", strings.Join(ev.VideoURLs, "\n")})
	}
	tw.Render()
}

func netText(w launchsdk.LaunchWindow) string {
	if t, ok := w.NetTime(); ok {
		return t.UTC().Format("2006-01-02 15:04 MST")
	}
	return deref(w.Net)
}

func relative(w launchsdk.LaunchWindow, now time.Time) string {
	t, ok := w.NetTime()
	if !ok {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func lspText(l *launchsdk.LSP) string {
	if l == nil {
		return ""
	}
	if l.Abbreviation != nil && *l.Abbreviation != "" {
		return *l.Abbreviation
	}
	return deref(l.Name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
