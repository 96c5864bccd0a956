/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package pipeline

import (
	"bytes"
	"net/http"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/prometheus/prometheus/prompb"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"plantpulse/common/client"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

// RemoteWriteExporter ships scored readings to a Prometheus remote-write
// endpoint (VictoriaMetrics in the default deployment) for long-term
// dashboards. Optional: a scoring node without the endpoint configured never
// constructs one.
type RemoteWriteExporter struct {
	url    string
	Client client.HTTPClient
	lc     logger.LoggingClient
}

func NewRemoteWriteExporter(url string, lc logger.LoggingClient) *RemoteWriteExporter {
	return &RemoteWriteExporter{
		url:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
		lc:     lc,
	}
}

func (e *RemoteWriteExporter) Export(reading telemetry.ScoredReading) error {
	writeRequest := toPromWriteRequest(reading)
	if len(writeRequest.Timeseries) == 0 {
		return nil
	}

	raw, err := writeRequest.Marshal()
	if err != nil {
		return errors.Wrap(err, "remote write: failed to marshal data in prometheus format")
	}
	compressed := snappy.Encode(nil, raw)

	req, err := http.NewRequest(http.MethodPost, e.url, bytes.NewReader(compressed))
	if err != nil {
		return errors.Wrap(err, "remote write: error creating post payload")
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	response, err := e.Client.Do(req)
	if response != nil && response.Body != nil {
		defer response.Body.Close()
	}
	if err != nil {
		return errors.Wrapf(err, "remote write: error while posting to %s", e.url)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return errors.Errorf("remote write: http status %d from %s", response.StatusCode, e.url)
	}
	e.lc.Debugf("remote write: %d series sent for machine %s", len(writeRequest.Timeseries), reading.MachineID)
	return nil
}

// toPromWriteRequest converts one scored reading to a Prometheus proto write
// request, one series per numeric field.
func toPromWriteRequest(reading telemetry.ScoredReading) *prompb.WriteRequest {
	timestamp := reading.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"pp_vibration", reading.Vibration},
		{"pp_temperature", reading.Temperature},
		{"pp_anomaly_score", reading.AnomalyScore},
		{"pp_raw_score", reading.RawScore},
		{"pp_health_score", reading.HealthScore},
	}
	if reading.Humidity != nil {
		fields = append(fields, struct {
			name  string
			value float64
		}{"pp_humidity", *reading.Humidity})
	}

	promTS := make([]prompb.TimeSeries, 0, len(fields))
	for _, field := range fields {
		labels := []prompb.Label{
			{Name: "__name__", Value: field.name},
			{Name: "machine_id", Value: reading.MachineID},
		}
		if reading.ModelVersion != "" {
			labels = append(labels, prompb.Label{Name: "model_version", Value: reading.ModelVersion})
		}

		sample := []prompb.Sample{{
			// Timestamp is int milliseconds for remote write.
			Timestamp: timestamp,
			Value:     field.value,
		}}
		promTS = append(promTS, prompb.TimeSeries{Labels: labels, Samples: sample})
	}

	return &prompb.WriteRequest{
		Timeseries: promTS,
	}
}
