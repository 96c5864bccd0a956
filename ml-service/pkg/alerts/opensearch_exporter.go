/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package alerts

import (
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/util"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/go-jose/go-jose/v3/json"
	"github.com/pkg/errors"

	"plantpulse/common/dto"
)

type OpenSearchExporterInterface interface {
	SaveEventToOpenSearch(ctx interfaces.AppFunctionContext, data interface{}) (bool, interface{})
}

type OpenSearchExporter struct {
	openSearchClient ElasticClientInterface
	lc               logger.LoggingClient
}

func NewOpenSearchExporter(service interfaces.ApplicationService) *OpenSearchExporter {
	openSearchExporter := new(OpenSearchExporter)
	openSearchExporter.openSearchClient = NewPulseOpenSearchClient(service)
	openSearchExporter.lc = service.LoggingClient()
	return openSearchExporter
}

// SaveEventToOpenSearch indexes the anomaly event so the dashboard can search
// it. A Closed event never overwrites the original document, it flips the
// status of the matching Open ones instead.
func (exporter OpenSearchExporter) SaveEventToOpenSearch(ctx interfaces.AppFunctionContext, data interface{}) (bool, interface{}) {

	updated := false
	if data == nil {
		return updated, errors.New("no Data Received")
	}

	bytes, err := util.CoerceType(data)
	if err != nil {
		return false, errors.New("error while marshalling data: " + err.Error())
	}

	var event dto.AnomalyEvent
	err = json.Unmarshal(bytes, &event)
	if err != nil {
		exporter.lc.Errorf("error unmarshaling: error: %v", err)
		return updated, errors.New("error while unmarshalling data: " + err.Error())
	}

	switch event.Status {
	case dto.EVENT_STATUS_CLOSED:
		// flip the matching Open documents rather than overwriting them
		exporter.lc.Debugf("about to search existing event with correlation_id:%s and status:Open", event.CorrelationId)
		existingOpenEvents, err := exporter.openSearchClient.SearchAnomalyEvents("correlation_id:\"" + event.CorrelationId + "\" AND status:Open")
		if err != nil {
			exporter.lc.Errorf("error finding Open event with correlationId=%s", event.CorrelationId)
			return updated, errors.Wrapf(err, "error while searching Open event with correlationId: %s", event.CorrelationId)
		}

		exporter.lc.Infof("Updating status of existing open events to Closed, Number of open events: %d", len(existingOpenEvents))
		for _, closureEvent := range existingOpenEvents {
			closureEvent.Status = dto.EVENT_STATUS_CLOSED
			err = exporter.openSearchClient.IndexAnomalyEvent(closureEvent)
			if err != nil {
				exporter.lc.Errorf("Error updating event status to Closed with correlationId=%s", event.CorrelationId)
				continue
			}
			updated = true
		}
		return updated, event

	default:
		if err := exporter.openSearchClient.IndexAnomalyEvent(&event); err != nil {
			exporter.lc.Errorf("Error indexing event: %+v", event)
			return updated, err
		}
		return true, event
	}
}
