package server

import launchsdk "launchline/sdk/go"

// Request inputs

// LaunchQuery mirrors the SDK filter. Zero values mean the filter is not set.
type LaunchQuery struct {
	Count  int    `query:"count" doc:"Number of upcoming launches to return"`
	ID     int    `query:"id" doc:"Exact launch id"`
	Name   string `query:"name" doc:"Name substring"`
	After  string `query:"after" doc:"Inclusive start date, e.g. 2020-01-01"`
	Before string `query:"before" doc:"Inclusive end date, e.g. 2020-12-31"`
}

// Filter converts the query into an SDK filter.
func (q LaunchQuery) Filter() launchsdk.LaunchFilter {
	var f launchsdk.LaunchFilter
	if q.Count != 0 {
		f.Count = launchsdk.Int(q.Count)
	}
	if q.ID != 0 {
		f.ID = launchsdk.Int(q.ID)
	}
	if q.Name != "" {
		f.Including = launchsdk.String(q.Name)
	}
	if q.After != "" {
		f.After = launchsdk.String(q.After)
	}
	if q.Before != "" {
		f.Before = launchsdk.String(q.Before)
	}
	return f
}

type LaunchPath struct {
	ID int `path:"id" minimum:"1"`
}

// Responses

type LaunchListResponse struct {
	Body []launchsdk.LaunchEvent `json:"body"`
}

type LaunchResponse struct {
	Body launchsdk.LaunchEvent `json:"body"`
}
