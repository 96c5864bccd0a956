package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type HttpResponseData struct {
	Method     string
	Host       string //Optional if present, we match using Host as well
	Body       interface{}
	StatusCode int
	err        error
}

// MockClient is the mock client
type MockClient struct {
	// For mock GET calls, store the URL to body that we need to return in here, Do will return the body based on matching URL
	Url2BodyMap map[string]HttpResponseData
}

// Do resolves the request against the registered URL prefixes.
func (m MockClient) Do(req *http.Request) (*http.Response, error) {
	for prefix, responseData := range m.Url2BodyMap {
		if strings.HasPrefix(req.URL.Path, prefix) {
			if req.Method == responseData.Method {
				bodyBytes, err := json.Marshal(responseData.Body)
				if err != nil {
					return nil, err
				}
				return &http.Response{
					StatusCode: responseData.StatusCode,
					Body:       io.NopCloser(bytes.NewReader(bodyBytes)),
				}, responseData.err
			}

		}
	}
	// Return 404 if not found
	return &http.Response{
		StatusCode: 404,
		Body:       nil,
	}, nil
}

// Assign the returned mock to client.Client so the code under test resolves
// its outbound HTTP calls here.
func NewMockClient() *MockClient {
	httpMockClient := new(MockClient)
	httpMockClient.Url2BodyMap = make(map[string]HttpResponseData)
	return httpMockClient
}

// RegisterExternalMockRestCall maps a URL (or URL prefix) to a canned
// response. Optional trailing values override, in order: body, status code
// (default 200), error, method.
func (m *MockClient) RegisterExternalMockRestCall(urlToMatch string, method string, responseData ...interface{}) {
	httpResponseData := HttpResponseData{
		StatusCode: 200,
		Method:     method,
		Body:       nil,
		err:        nil,
	}

	for index, val := range responseData {
		switch index {
		case 0:
			httpResponseData.Body = val
		case 1:
			httpResponseData.StatusCode, _ = val.(int)
		case 2:
			httpResponseData.err, _ = val.(error)
		case 3:
			httpResponseData.Method, _ = val.(string)
		}
	}

	if strings.HasPrefix(urlToMatch, "http") {
		urlx, err := url.Parse(urlToMatch)
		if err == nil {
			httpResponseData.Host = urlx.Host
		}
		m.Url2BodyMap[urlx.Path] = httpResponseData
	} else {
		m.Url2BodyMap[urlToMatch] = httpResponseData
	}

}
