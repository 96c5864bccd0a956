/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package alerts

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/go-mod-bootstrap/v3/bootstrap/startup"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/hashicorp/go-uuid"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v4/opensearchutil"
	"github.com/pkg/errors"

	"plantpulse/common/dto"
)

// Refer https://github.com/opensearch-project/opensearch-go/blob/main/USER_GUIDE.md for example implementation code
type ElasticClientInterface interface {
	SearchAnomalyEvents(luceneQuery string) ([]*dto.AnomalyEvent, error)
	Search(luceneQuery string, indexName string) (map[string]interface{}, error)
	IndexAnomalyEvent(event *dto.AnomalyEvent) error
	Index(req opensearchapi.IndexReq) error
	ConvertToAnomalyEvents(result map[string]interface{}) ([]*dto.AnomalyEvent, error)
	BuildSearchRequest(luceneQuery string, indexName string) opensearchapi.SearchReq
}

type PulseOpenSearchClient struct {
	Client *opensearch.Client
	logger logger.LoggingClient
}

const (
	AnomalyEventIndexName = "anomaly_event_index"
)

/*
New opensearch client creation from configuration in configuration.yaml
The following configuration is required
OpenSearchURL, secrets -- username, password
elastic index name to be passed as param:
anomaly_event_index for anomaly and health events
*/

func NewPulseOpenSearchClient(service interfaces.ApplicationService) *PulseOpenSearchClient {

	var openSearchClient *PulseOpenSearchClient
	var err error

	logger := service.LoggingClient()
	logger.Info("About to create the elastic client")

	startupTimer := startup.NewStartUpTimer("opensearch-client")
	for startupTimer.HasNotElapsed() {

		openSearchClient, err = createPulseElasticClient(service)
		if err == nil {
			break
		}
		openSearchClient = nil
		fmt.Printf("Couldn't create opensearch client: %v", err.Error())
		startupTimer.SleepForInterval()
	}
	if openSearchClient == nil {
		fmt.Printf("Failed to create opensearch client in allotted time")
		os.Exit(1)
	}

	return openSearchClient
}

func createPulseElasticClient(service interfaces.ApplicationService) (*PulseOpenSearchClient, error) {

	logger := service.LoggingClient()

	var elasticURL []string
	var username, password string
	var err error
	var skipCertVerification bool // false by default

	const (
		OPENSEARCHURL        = "OpenSearchURL"
		SECRETS              = "secrets"
		SKIPCERTVERIFICATION = "SkipCertVerification"
	)

	properties := []string{OPENSEARCHURL, SECRETS, SKIPCERTVERIFICATION}
	errorData := ""

	for _, p := range properties {
		switch p {
		case OPENSEARCHURL:
			elasticURL, err = service.GetAppSettingStrings(OPENSEARCHURL)
			errorData = "elasticURL"
		case SECRETS:
			// Security is disabled in the default install, missing opensearch
			// credentials are not an error
			creds, secErr := service.SecretProvider().GetSecret("opensearch", "username", "password")
			if secErr == nil {
				username = creds["username"]
				password = creds["password"]
			}
		case SKIPCERTVERIFICATION:
			value, _ := service.GetAppSetting(SKIPCERTVERIFICATION)
			skipCertVerification, _ = strconv.ParseBool(value)
			logger.Infof("SkipCertVerification: %t", skipCertVerification)
		}
		if err != nil {
			logger.Errorf("Could not read %s, error: %s", errorData, err.Error())
			return nil, errors.Wrapf(err, "Could not read %s", errorData)
		}
	}
	logger.Infof("OpenSearch URL: %s, skip certificate verification: %t",
		elasticURL, skipCertVerification)

	tp := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: skipCertVerification},
	}
	cfg := opensearch.Config{
		Addresses: elasticURL,
		Username:  username,
		Password:  password,
		Transport: tp,
	}

	openSearchClient, err := opensearch.NewClient(cfg)
	if err != nil {
		logger.Error(fmt.Sprintf("ERROR: Unable to create client: %v\n", err))
		return nil, errors.Wrapf(err, "failed to create opensearch client for %s", elasticURL)
	}

	return &PulseOpenSearchClient{
		Client: openSearchClient,
		logger: logger,
	}, nil
}

func (e *PulseOpenSearchClient) SearchAnomalyEvents(luceneQuery string) ([]*dto.AnomalyEvent, error) {
	hits, err := e.Search(luceneQuery, AnomalyEventIndexName)
	if err != nil {
		return nil, err
	}
	events, err := e.ConvertToAnomalyEvents(hits)
	return events, err
}

func (e *PulseOpenSearchClient) Search(luceneQuery string, indexName string) (map[string]interface{}, error) {
	searchReq := e.BuildSearchRequest(luceneQuery, indexName)

	res, err := e.Client.Do(context.Background(), searchReq, nil)
	if err != nil {
		e.logger.Error(fmt.Sprintf("Error getting response: %v\n", err))
		return nil, err
	}

	defer res.Body.Close()

	if res.IsError() {
		e.logger.Error(fmt.Sprintf("[%s] Error retrieving the document\n", res.Status()))
		return nil, errors.Errorf("search failed: %s", res.Status())
	}
	// Deserialize the response into a map.
	hits := make(map[string]interface{}, 1)
	if err := json.NewDecoder(res.Body).Decode(&hits); err != nil {
		e.logger.Warn(fmt.Sprintf("search: Error parsing the response body: %v\n", err))
		return nil, err
	}
	return hits, nil
}

func (e *PulseOpenSearchClient) IndexAnomalyEvent(event *dto.AnomalyEvent) error {
	e.logger.Debug("Adding to anomaly event database")
	currentTime := time.Now().UnixNano() / 1000000
	if event.Created == 0 {
		event.Created = currentTime // Don't overwrite createDate for existing docs
	}
	event.Modified = currentTime

	// If ID is empty, generate one
	if len(event.Id) == 0 {
		event.Id, _ = uuid.GenerateUUID()
	}

	req := opensearchapi.IndexReq{
		Index:      AnomalyEventIndexName,
		DocumentID: event.Id,
		Body:       opensearchutil.NewJSONReader(event),
		Params: opensearchapi.IndexParams{
			Refresh: "true",
		},
	}

	e.logger.Debug(fmt.Sprintf("Document being saved=%s", event.Id))
	return e.Index(req)
}

func (e *PulseOpenSearchClient) Index(req opensearchapi.IndexReq) error {
	res, err := e.Client.Do(context.Background(), req, nil)
	if err != nil {
		e.logger.Errorf("Error indexing the request, error response: %v", err)
		return err
	}

	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		e.logger.Error(fmt.Sprintf("[%s] Error response from opensearch: %s", res.Status(), string(bodyBytes)))
		e.logger.Error(fmt.Sprintf("[%s] Error indexing document ID=%s\n", res.Status(), req.DocumentID))
		return errors.Errorf("Error indexing document: %s", res.String())
	}
	// Deserialize the response into a map.
	r := make(map[string]interface{}, 1)
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		e.logger.Warn(fmt.Sprintf("IndexRequest: Error parsing the response body: %v\n", err))
		return err
	}
	version := int(r["_version"].(float64))
	e.logger.Debugf("[%s] %s; version=%d", res.Status(), r["result"], version)
	return nil
}

func (e *PulseOpenSearchClient) ConvertToAnomalyEvents(result map[string]interface{}) ([]*dto.AnomalyEvent, error) {

	events := make([]*dto.AnomalyEvent, 0)
	if result["hits"] == nil {
		return events, nil
	}
	hits, ok := result["hits"].(map[string]interface{})
	if !ok || hits["hits"] == nil {
		e.logger.Info("No data found")
		return events, nil
	}

	hitsArray, ok := hits["hits"].([]interface{})
	if !ok {
		return events, nil
	}

	for i := range hitsArray {
		element, ok := hitsArray[i].(map[string]interface{})
		if !ok {
			continue
		}
		event := new(dto.AnomalyEvent)
		events = append(events, event)

		var source map[string]interface{}
		if source, ok = element["_source"].(map[string]interface{}); !ok {
			event.Id = e.getString(element, "_id")
			continue
		}

		*event = dto.AnomalyEvent{
			Id:             e.getString(element, "_id"),
			Class:          e.getString(source, "class"),
			EventType:      e.getString(source, "event_type"),
			EquipmentName:  e.getString(source, "equipment_name"),
			Name:           e.getString(source, "name"),
			Msg:            e.getString(source, "msg"),
			SourceNode:     e.getString(source, "source_node"),
			Severity:       e.getString(source, "severity"),
			RiskLevel:      e.getString(source, "risk_level"),
			RelatedMetrics: e.getStringList(source, "related_metrics"),
			Thresholds:     e.getMap(source, "thresholds"),
			ActualValues:   e.getMap(source, "actual_values"),
			Unit:           e.getString(source, "unit"),
			Location:       e.getString(source, "location"),
			CorrelationId:  e.getString(source, "correlation_id"),
			Created:        e.getInt(source, "created"),
			Modified:       e.getInt(source, "modified"),
			Status:         e.getString(source, "status"),
			Profile:        e.getString(source, "profile"),
			EventSource:    e.getString(source, "event_source"),
			Labels:         e.getStringList(source, "labels"),
		}

		if taskCollection, ok := source["tasks"].([]interface{}); ok {
			tasks := make([]dto.TaskRef, len(taskCollection))
			for i, task := range taskCollection {
				taskMap, ok := task.(map[string]interface{})
				if !ok {
					continue
				}
				tasks[i] = dto.TaskRef{
					Id:           e.getString(taskMap, "id"),
					Title:        e.getString(taskMap, "title"),
					Priority:     e.getString(taskMap, "priority"),
					Status:       e.getString(taskMap, "status"),
					ErrorMessage: e.getString(taskMap, "error_message"),
				}
			}
			event.Tasks = tasks
		}

		// if the status has not changed, retain the additional data that was present earlier
		// The scorer keeps firing and its output doesn't include additionalData
		additionalData, ok := source["additional_data"].(map[string]interface{})
		if ok {
			event.AdditionalData = make(map[string]string)
			for key, val := range additionalData {
				if _, ok := val.(string); ok {
					event.AdditionalData[key], _ = val.(string)
				}
			}
		}
	}

	return events, nil
}

/*
Utility method to build a SearchRequest
luceneQuery example:
correlation_id: \"someCorreId\" AND _id:"\someid\"
*/
func (e *PulseOpenSearchClient) BuildSearchRequest(luceneQuery string, indexName string) opensearchapi.SearchReq {
	index := []string{indexName}
	query := map[string]map[string]map[string]string{
		"query": {
			"query_string": {
				"query": luceneQuery,
			},
		},
	}

	searchReq := opensearchapi.SearchReq{
		Indices: index,
		Body:    opensearchutil.NewJSONReader(&query),
		Params: opensearchapi.SearchParams{
			Pretty: true,
		},
	}
	return searchReq
}

func (e *PulseOpenSearchClient) getString(data map[string]interface{}, key string) string {
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}

// JSON decoding hands lists back as []interface{}, never []string
func (e *PulseOpenSearchClient) getStringList(data map[string]interface{}, key string) []string {
	values, ok := data[key].([]interface{})
	if !ok {
		return []string{}
	}
	list := make([]string, 0, len(values))
	for _, val := range values {
		if s, ok := val.(string); ok {
			list = append(list, s)
		}
	}
	return list
}

// JSON numbers decode as float64
func (e *PulseOpenSearchClient) getInt(data map[string]interface{}, key string) int64 {
	if val, ok := data[key].(float64); ok {
		return int64(val)
	}
	return 0
}

func (e *PulseOpenSearchClient) getMap(data map[string]interface{}, key string) map[string]interface{} {
	if val, ok := data[key].(map[string]interface{}); ok && val != nil {
		return val
	}
	return map[string]interface{}{}
}
