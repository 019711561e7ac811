package launchsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	launchsdk "launchline/sdk/go"
)

func parse(t *testing.T, c *launchsdk.Client, doc string) ([]launchsdk.LaunchEvent, error) {
	t.Helper()
	return c.ParseLaunchList(context.Background(), json.RawMessage(doc))
}

func TestParseMinimalLaunch(t *testing.T) {
	f := newFakeFetcher(map[string]string{testRoot + "/launchstatus/2": `{"types":[{"name":"Go","description":"Go for launch"}]}`})
	c := newTestClient(t, f)

	launches, err := parse(t, c, `{"launches":[{"id":"5","name":"Test","vidURLs":[],"windowstart":"t1","status":2}]}`)
	require.NoError(t, err)
	require.Len(t, launches, 1)

	ev := launches[0]
	assert.Equal(t, 5, ev.ID)
	assert.Equal(t, "Test", ev.Name)
	assert.NotNil(t, ev.VideoURLs)
	assert.Empty(t, ev.VideoURLs)
	require.NotNil(t, ev.Window.Start)
	assert.Equal(t, "t1", *ev.Window.Start)
	assert.Nil(t, ev.Window.End)
	assert.Nil(t, ev.Window.ISONet)
	require.NotNil(t, ev.Status.Name)
	assert.Equal(t, "Go", *ev.Status.Name)
	assert.Equal(t, "Go for launch", *ev.Status.Description)
	assert.Equal(t, 2, *ev.Status.Code)
	assert.Nil(t, ev.Status.HoldReason)
	assert.Nil(t, ev.Status.InHold)
	assert.Nil(t, ev.Rocket)
	assert.Nil(t, ev.Location)
	assert.Nil(t, ev.Missions)
	assert.Nil(t, ev.LSP)
	assert.Equal(t, 1, f.count(testRoot+"/launchstatus/2"))
}

const fullLaunch = `{
  "id": 1500,
  "name": "Falcon 9 Block 5 | Starlink",
  "vidURLs": ["https://example.com/a", "https://example.com/b"],
  "windowstart": "March 1, 2020 04:00:00 UTC",
  "windowend": "March 1, 2020 06:00:00 UTC",
  "net": "March 1, 2020 04:00:00 UTC",
  "isostart": "20200301T040000Z",
  "isoend": "20200301T060000Z",
  "isonet": "20200301T040000Z",
  "status": 1,
  "inhold": 0,
  "holdreason": null,
  "failreason": "",
  "changed": "2020-02-28 10:00:00",
  "rocket": {
    "id": 188,
    "name": "Falcon 9 Block 5",
    "configuration": "Block 5",
    "familyname": "Falcon",
    "imageURL": "https://example.com/f9.png",
    "wikiURL": "https://en.wikipedia.org/wiki/Falcon_9",
    "agencies": [
      {"id": 121, "name": "SpaceX", "abbrev": "SpX", "countryCode": "USA", "wikiURL": "https://en.wikipedia.org/wiki/SpaceX"},
      {"id": 44, "name": "NASA", "abbrev": "NASA", "countryCode": "USA", "wikiURL": "https://en.wikipedia.org/wiki/NASA"}
    ]
  },
  "location": {
    "id": 16,
    "name": "Cape Canaveral, FL, USA",
    "countryCode": "USA",
    "pads": [
      {"id": 84, "name": "SLC-40", "latitude": 28.56194122, "longitude": -80.57735736},
      {"id": 85, "name": "LC-39A", "latitude": "28.608", "longitude": null}
    ]
  },
  "missions": [
    {"id": 1, "name": "Starlink 5", "description": "Batch five", "type": 14, "typeName": "Communications", "wikiURL": "", "agencies": null},
    {"id": 2, "name": "Rideshare", "description": "Second", "type": "10", "typeName": "Dedicated Rideshare", "agencies": [
      {"id": 3, "name": "B"}, {"id": 4, "name": "C"}
    ]},
    {"id": 3, "name": "No agencies key"}
  ],
  "lsp": {"id": 121, "name": "SpaceX", "abbrev": "SpX", "countryCode": "USA", "wikiURL": "https://en.wikipedia.org/wiki/SpaceX"}
}`

func TestParseFullLaunch(t *testing.T) {
	f := newFakeFetcher(map[string]string{testRoot + "/launchstatus/1": statusGo})
	c := newTestClient(t, f)

	launches, err := parse(t, c, `{"launches":[`+fullLaunch+`]}`)
	require.NoError(t, err)
	require.Len(t, launches, 1)
	ev := launches[0]

	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, ev.VideoURLs)
	start, ok := ev.Window.StartTime()
	require.True(t, ok)
	assert.Equal(t, 2020, start.Year())
	assert.Equal(t, 4, start.Hour())

	assert.False(t, *ev.Status.InHold)
	assert.Nil(t, ev.Status.HoldReason)
	require.NotNil(t, ev.Status.FailReason)
	assert.Equal(t, "", *ev.Status.FailReason)

	require.NotNil(t, ev.Rocket)
	assert.Equal(t, "Falcon", *ev.Rocket.FamilyName)
	require.Len(t, ev.Rocket.Agencies, 2)
	assert.Equal(t, "SpX", *ev.Rocket.Agencies[0].Abbreviation)
	assert.Equal(t, "NASA", *ev.Rocket.Agencies[1].Name)

	require.NotNil(t, ev.Location)
	require.Len(t, ev.Location.Pads, 2)
	assert.Equal(t, "SLC-40", *ev.Location.Pads[0].Name)
	assert.InDelta(t, 28.608, *ev.Location.Pads[1].Latitude, 1e-9)
	assert.Nil(t, ev.Location.Pads[1].Longitude)

	require.Len(t, ev.Missions, 3)
	assert.NotNil(t, ev.Missions[0].Agencies, "explicit null agencies is an empty list")
	assert.Empty(t, ev.Missions[0].Agencies)
	assert.Equal(t, 10, *ev.Missions[1].Type)
	require.Len(t, ev.Missions[1].Agencies, 2)
	assert.Equal(t, 3, *ev.Missions[1].Agencies[0].ID)
	assert.Equal(t, 4, *ev.Missions[1].Agencies[1].ID)
	assert.Nil(t, ev.Missions[2].Agencies, "missing agencies key is absent")
	assert.Nil(t, ev.Missions[2].WikiURL)

	require.NotNil(t, ev.LSP)
	assert.Equal(t, "SpaceX", *ev.LSP.Name)
	assert.Equal(t, "USA", *ev.LSP.CountryCode)
	assert.Equal(t, 1, f.total(), "inline lsp must not trigger a fetch")
}

func TestParsePreservesLaunchOrder(t *testing.T) {
	var items []string
	for i := 0; i < 25; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"name":"L%d","status":%d}`, i, i, 1+i%2))
	}
	doc := `{"launches":[` + strings.Join(items, ",") + `]}`
	docs := map[string]string{
		testRoot + "/launchstatus/1": statusGo,
		testRoot + "/launchstatus/2": statusTBD,
	}

	for _, concurrency := range []int{1, 4, 32} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			c := newTestClient(t, newFakeFetcher(docs), launchsdk.WithConcurrency(concurrency))
			launches, err := parse(t, c, doc)
			require.NoError(t, err)
			require.Len(t, launches, 25)
			for i, ev := range launches {
				assert.Equal(t, i, ev.ID)
				assert.Equal(t, fmt.Sprintf("L%d", i), ev.Name)
			}
			assert.Equal(t, "TBD", *launches[1].Status.Name)
		})
	}
}

func TestParseStatusLookupPerLaunchWithoutCache(t *testing.T) {
	f := newFakeFetcher(map[string]string{testRoot + "/launchstatus/1": statusGo})
	c := newTestClient(t, f)
	_, err := parse(t, c, `{"launches":[{"id":1,"name":"a","status":1},{"id":2,"name":"b","status":1},{"id":3,"name":"c","status":1}]}`)
	require.NoError(t, err)
	assert.Equal(t, 3, f.count(testRoot+"/launchstatus/1"))
}

func TestParseStatusLookupCached(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		testRoot + "/launchstatus/1": statusGo,
		testRoot + "/lsp/121":        `{"agencies":[{"id":121,"name":"SpaceX","abbrev":"SpX"}]}`,
	})
	c := newTestClient(t, f, launchsdk.WithCache(16))
	launches, err := parse(t, c, `{"launches":[{"id":1,"name":"a","status":1,"lsp":"121"},{"id":2,"name":"b","status":1,"lsp":121}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(testRoot+"/launchstatus/1"))
	assert.Equal(t, 1, f.count(testRoot+"/lsp/121"))

	require.NotNil(t, launches[0].LSP)
	require.NotNil(t, launches[1].LSP)
	assert.Equal(t, *launches[0].LSP, *launches[1].LSP)
	assert.NotSame(t, launches[0].LSP.Name, launches[1].LSP.Name, "cached records must not share storage")
	assert.NotSame(t, launches[0].Status.Name, launches[1].Status.Name)
}

func TestResolveLSPReference(t *testing.T) {
	agency := `{"id":121,"name":"SpaceX","abbrev":"SpX","countryCode":"USA","wikiURL":"https://en.wikipedia.org/wiki/SpaceX"}`
	f := newFakeFetcher(map[string]string{
		testRoot + "/lsp/121": `{"agencies":[` + agency + `],"total":1}`,
	})
	c := newTestClient(t, f)

	byRef, err := parse(t, c, `{"launches":[{"id":1,"name":"a","lsp":"121"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(testRoot+"/lsp/121"))

	inline, err := parse(t, c, `{"launches":[{"id":1,"name":"a","lsp":`+agency+`}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(testRoot+"/lsp/121"), "inline lsp must not fetch")

	require.NotNil(t, byRef[0].LSP)
	assert.Equal(t, *inline[0].LSP, *byRef[0].LSP)

	again, err := parse(t, c, `{"launches":[{"id":1,"name":"a","lsp":121}]}`)
	require.NoError(t, err)
	assert.Equal(t, *byRef[0].LSP, *again[0].LSP)
	assert.Equal(t, 2, f.count(testRoot+"/lsp/121"))
}

func TestResolveLSPSecondIndirection(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		testRoot + "/lsp/121": `{"agencies":["999"]}`,
		testRoot + "/lsp/999": `{"agencies":[{"id":999,"name":"Loop"}]}`,
	})
	c := newTestClient(t, f)
	_, err := parse(t, c, `{"launches":[{"id":1,"name":"a","lsp":"121"}]}`)
	var ure *launchsdk.UnsupportedReferenceError
	require.ErrorAs(t, err, &ure)
	assert.Equal(t, "121", ure.Ref)
	assert.Equal(t, 0, f.count(testRoot+"/lsp/999"))
}

func TestParseMalformed(t *testing.T) {
	docs := map[string]string{
		testRoot + "/launchstatus/1": statusGo,
		testRoot + "/launchstatus/9": `{"types":[]}`,
		testRoot + "/lsp/5":          `{"agencies":[]}`,
	}
	testCases := []struct {
		name string
		doc  string
		path string
	}{
		{name: "missing launches", doc: `{"total":0}`, path: "launches"},
		{name: "missing id", doc: `{"launches":[{"name":"a"}]}`, path: "launches[0].id"},
		{name: "missing name", doc: `{"launches":[{"id":1}]}`, path: "launches[0].name"},
		{name: "bad id", doc: `{"launches":[{"id":"abc","name":"a"}]}`, path: "launches[0].id"},
		{name: "empty status types", doc: `{"launches":[{"id":1,"name":"a","status":9}]}`, path: "launchstatus/9.types"},
		{name: "empty lsp agencies", doc: `{"launches":[{"id":1,"name":"a","lsp":5}]}`, path: "lsp/5.agencies"},
		{name: "bad field inside present rocket", doc: `{"launches":[{"id":1,"name":"a","rocket":{"id":1,"agencies":[{"id":{}}]}}]}`, path: "launches[0].rocket.agencies[0].id"},
		{name: "rocket agencies not an array", doc: `{"launches":[{"id":1,"name":"a","rocket":{"agencies":"x"}}]}`, path: "launches[0].rocket.agencies"},
		{name: "pad not an object", doc: `{"launches":[{"id":1,"name":"a","location":{"pads":[1]}}]}`, path: "launches[0].location.pads[0]"},
		{name: "lsp wrong shape", doc: `{"launches":[{"id":1,"name":"a","lsp":true}]}`, path: "launches[0].lsp"},
		{name: "second launch bad", doc: `{"launches":[{"id":1,"name":"a","status":1},{"id":2}]}`, path: "launches[1].name"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, newFakeFetcher(docs))
			launches, err := parse(t, c, tc.doc)
			assert.Nil(t, launches)
			var mre *launchsdk.MalformedResponseError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, tc.path, mre.Path)
		})
	}
}

func TestParseNullSubObjectsAreAbsent(t *testing.T) {
	c := newTestClient(t, newFakeFetcher(nil))
	launches, err := parse(t, c, `{"launches":[{"id":1,"name":"a","rocket":null,"location":null,"lsp":null,"missions":null,"status":null}]}`)
	require.NoError(t, err)
	ev := launches[0]
	assert.Nil(t, ev.Rocket)
	assert.Nil(t, ev.Location)
	assert.Nil(t, ev.LSP)
	assert.NotNil(t, ev.Missions)
	assert.Empty(t, ev.Missions)
	assert.Nil(t, ev.Status.Code)
	assert.Nil(t, ev.Status.Name)
}

func TestParseEmptyList(t *testing.T) {
	c := newTestClient(t, newFakeFetcher(nil))
	launches, err := parse(t, c, `{"launches":[],"total":0}`)
	require.NoError(t, err)
	assert.Empty(t, launches)
}

func TestParseTransportErrorPropagates(t *testing.T) {
	c := newTestClient(t, newFakeFetcher(nil), launchsdk.WithConcurrency(4))
	_, err := parse(t, c, `{"launches":[{"id":1,"name":"a","status":3},{"id":2,"name":"b","status":3}]}`)
	var te *launchsdk.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, testRoot+"/launchstatus/3", te.URL)
	assert.False(t, errors.Is(err, launchsdk.ErrNotFound))
}
