package launchsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ParseLaunchList converts a launch list document into launch events in source order.
// Status codes and LSP references are resolved through the client's fetcher.
func (c *Client) ParseLaunchList(ctx context.Context, raw json.RawMessage) ([]LaunchEvent, error) {
	doc, err := decodeObject("", raw)
	if err != nil {
		return nil, err
	}
	elems, present, err := doc.optArray("launches")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, malformed("launches", "required field missing")
	}
	out := make([]LaunchEvent, len(elems))
	if c.concurrency <= 1 || len(elems) < 2 {
		for i, elem := range elems {
			ev, err := c.parseLaunch(ctx, indexPath("launches", i), elem)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, elem := range elems {
		g.Go(func() error {
			ev, err := c.parseLaunch(gctx, indexPath("launches", i), elem)
			if err != nil {
				return err
			}
			out[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) parseLaunch(ctx context.Context, path string, raw json.RawMessage) (LaunchEvent, error) {
	obj, err := decodeObject(path, raw)
	if err != nil {
		return LaunchEvent{}, err
	}
	id, err := obj.reqInt("id")
	if err != nil {
		return LaunchEvent{}, err
	}
	name, err := obj.reqString("name")
	if err != nil {
		return LaunchEvent{}, err
	}
	videos, err := obj.optStrings("vidURLs")
	if err != nil {
		return LaunchEvent{}, err
	}
	window, err := parseWindow(obj)
	if err != nil {
		return LaunchEvent{}, err
	}
	status, err := c.parseStatus(ctx, obj)
	if err != nil {
		return LaunchEvent{}, err
	}
	ev := LaunchEvent{ID: id, Name: name, VideoURLs: videos, Window: window, Status: status}

	rocketObj, ok, err := obj.optObject("rocket")
	if err != nil {
		return LaunchEvent{}, err
	}
	if ok {
		rocket, err := parseRocket(rocketObj)
		if err != nil {
			return LaunchEvent{}, err
		}
		ev.Rocket = &rocket
	}

	locationObj, ok, err := obj.optObject("location")
	if err != nil {
		return LaunchEvent{}, err
	}
	if ok {
		location, err := parseLocation(locationObj)
		if err != nil {
			return LaunchEvent{}, err
		}
		ev.Location = &location
	}

	missions, present, err := obj.optArray("missions")
	if err != nil {
		return LaunchEvent{}, err
	}
	if present {
		ev.Missions, err = parseMissionList(obj.at("missions"), missions)
		if err != nil {
			return LaunchEvent{}, err
		}
	}

	if lspRaw, ok := obj.value("lsp"); ok {
		lsp, err := c.resolveLSP(ctx, obj.at("lsp"), lspRaw)
		if err != nil {
			return LaunchEvent{}, err
		}
		ev.LSP = &lsp
	}
	return ev, nil
}

func parseWindow(obj object) (LaunchWindow, error) {
	r := obj.reader()
	w := LaunchWindow{
		Start:    r.str("windowstart"),
		End:      r.str("windowend"),
		Net:      r.str("net"),
		ISOStart: r.str("isostart"),
		ISOEnd:   r.str("isoend"),
		ISONet:   r.str("isonet"),
	}
	return w, r.err
}

func (c *Client) parseStatus(ctx context.Context, obj object) (LaunchStatus, error) {
	r := obj.reader()
	st := LaunchStatus{
		Code:       r.integer("status"),
		HoldReason: r.str("holdreason"),
		FailReason: r.str("failreason"),
		Changed:    r.str("changed"),
		InHold:     r.boolean("inhold"),
	}
	if r.err != nil {
		return LaunchStatus{}, r.err
	}
	if st.Code == nil {
		return st, nil
	}
	text, err := c.resolveStatusCode(ctx, *st.Code)
	if err != nil {
		return LaunchStatus{}, err
	}
	st.Name = text.Name
	st.Description = text.Description
	return st, nil
}

// resolveStatusCode looks up the name and description of a status code.
// Without a cache every call is a round trip.
func (c *Client) resolveStatusCode(ctx context.Context, code int) (statusText, error) {
	if st, ok := c.cache.status(code); ok {
		return st, nil
	}
	raw, err := c.fetcher.FetchJSON(ctx, statusCodeURL(c.root, code))
	if err != nil {
		return statusText{}, err
	}
	doc, err := decodeObject(fmt.Sprintf("launchstatus/%d", code), raw)
	if err != nil {
		return statusText{}, err
	}
	types, _, err := doc.optArray("types")
	if err != nil {
		return statusText{}, err
	}
	if len(types) == 0 {
		return statusText{}, malformed(doc.at("types"), "expected at least one element")
	}
	first, err := decodeObject(indexPath(doc.at("types"), 0), types[0])
	if err != nil {
		return statusText{}, err
	}
	r := first.reader()
	st := statusText{Name: r.str("name"), Description: r.str("description")}
	if r.err != nil {
		return statusText{}, r.err
	}
	c.cache.putStatus(code, st)
	return st, nil
}

func parseAgency(obj object) (Agency, error) {
	r := obj.reader()
	a := Agency{
		ID:           r.integer("id"),
		Name:         r.str("name"),
		Abbreviation: r.str("abbrev"),
		CountryCode:  r.str("countryCode"),
		WikiURL:      r.str("wikiURL"),
	}
	return a, r.err
}

// parseAgencies parses the agency array under key. A missing key gives nil,
// an explicit null gives an empty list.
func parseAgencies(obj object, key string) ([]Agency, error) {
	elems, present, err := obj.optArray(key)
	if err != nil || !present {
		return nil, err
	}
	agencies := make([]Agency, 0, len(elems))
	for i, elem := range elems {
		agencyObj, err := decodeObject(indexPath(obj.at(key), i), elem)
		if err != nil {
			return nil, err
		}
		agency, err := parseAgency(agencyObj)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, agency)
	}
	return agencies, nil
}

func parseRocket(obj object) (Rocket, error) {
	r := obj.reader()
	rocket := Rocket{
		ID:            r.integer("id"),
		Name:          r.str("name"),
		Configuration: r.str("configuration"),
		FamilyName:    r.str("familyname"),
		ImageURL:      r.str("imageURL"),
		WikiURL:       r.str("wikiURL"),
	}
	if r.err != nil {
		return Rocket{}, r.err
	}
	agencies, err := parseAgencies(obj, "agencies")
	if err != nil {
		return Rocket{}, err
	}
	rocket.Agencies = agencies
	return rocket, nil
}

func parsePad(obj object) (LaunchPad, error) {
	r := obj.reader()
	pad := LaunchPad{
		ID:        r.integer("id"),
		Name:      r.str("name"),
		Latitude:  r.float("latitude"),
		Longitude: r.float("longitude"),
	}
	return pad, r.err
}

func parseLocation(obj object) (LaunchLocation, error) {
	r := obj.reader()
	location := LaunchLocation{
		ID:          r.integer("id"),
		Name:        r.str("name"),
		CountryCode: r.str("countryCode"),
	}
	if r.err != nil {
		return LaunchLocation{}, r.err
	}
	elems, present, err := obj.optArray("pads")
	if err != nil {
		return LaunchLocation{}, err
	}
	if !present {
		return location, nil
	}
	location.Pads = make([]LaunchPad, 0, len(elems))
	for i, elem := range elems {
		padObj, err := decodeObject(indexPath(obj.at("pads"), i), elem)
		if err != nil {
			return LaunchLocation{}, err
		}
		pad, err := parsePad(padObj)
		if err != nil {
			return LaunchLocation{}, err
		}
		location.Pads = append(location.Pads, pad)
	}
	return location, nil
}

func parseMissionList(path string, elems []json.RawMessage) ([]Mission, error) {
	missions := make([]Mission, 0, len(elems))
	for i, elem := range elems {
		obj, err := decodeObject(indexPath(path, i), elem)
		if err != nil {
			return nil, err
		}
		r := obj.reader()
		mission := Mission{
			ID:          r.integer("id"),
			Name:        r.str("name"),
			Description: r.str("description"),
			Type:        r.integer("type"),
			TypeName:    r.str("typeName"),
			WikiURL:     r.str("wikiURL"),
		}
		if r.err != nil {
			return nil, r.err
		}
		mission.Agencies, err = parseAgencies(obj, "agencies")
		if err != nil {
			return nil, err
		}
		missions = append(missions, mission)
	}
	return missions, nil
}

// lspRef is either an inline provider object or a bare id naming one.
type lspRef struct {
	inline *object
	ref    string
}

func decodeLSPRef(path string, raw json.RawMessage) (lspRef, error) {
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		obj, err := decodeObject(path, raw)
		if err != nil {
			return lspRef{}, err
		}
		return lspRef{inline: &obj}, nil
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return lspRef{}, &MalformedResponseError{Path: path, Reason: "expected object or id", Err: err}
	}
	var ref string
	switch t := v.(type) {
	case json.Number:
		ref = t.String()
	case string:
		ref = strings.TrimSpace(t)
	default:
		return lspRef{}, malformed(path, fmt.Sprintf("expected object or id, got %T", v))
	}
	if ref == "" {
		return lspRef{}, malformed(path, "empty lsp reference")
	}
	return lspRef{ref: ref}, nil
}

// resolveLSP turns an inline provider or a provider id into an LSP. An id costs one
// fetch of lsp/{id}; a second level of indirection is refused.
func (c *Client) resolveLSP(ctx context.Context, path string, raw json.RawMessage) (LSP, error) {
	ref, err := decodeLSPRef(path, raw)
	if err != nil {
		return LSP{}, err
	}
	if ref.inline != nil {
		agency, err := parseAgency(*ref.inline)
		return LSP(agency), err
	}
	if cached, ok := c.cache.lsp(ref.ref); ok {
		return cached, nil
	}
	resp, err := c.fetcher.FetchJSON(ctx, lspURL(c.root, ref.ref))
	if err != nil {
		return LSP{}, err
	}
	doc, err := decodeObject("lsp/"+ref.ref, resp)
	if err != nil {
		return LSP{}, err
	}
	agencies, _, err := doc.optArray("agencies")
	if err != nil {
		return LSP{}, err
	}
	if len(agencies) == 0 {
		return LSP{}, malformed(doc.at("agencies"), "expected at least one element")
	}
	resolved, err := decodeLSPRef(indexPath(doc.at("agencies"), 0), agencies[0])
	if err != nil {
		return LSP{}, err
	}
	if resolved.inline == nil {
		return LSP{}, &UnsupportedReferenceError{Ref: ref.ref}
	}
	agency, err := parseAgency(*resolved.inline)
	if err != nil {
		return LSP{}, err
	}
	lsp := LSP(agency)
	c.cache.putLSP(ref.ref, lsp)
	return lsp, nil
}
