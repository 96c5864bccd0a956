/*******************************************************************************
* Contributors: BMC Software, Inc. - BMC Helix Edge
*
* (c) Copyright 2020-2025 BMC Software, Inc.
*******************************************************************************/

package client

import "net/http"

// HTTPClient is the seam that lets tests swap the outbound http client used
// for remote-write and other external calls.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var Client HTTPClient = &http.Client{}
