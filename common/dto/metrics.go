package dto

// Metrics is the telemetry envelope the metric reporter publishes on the MQTT bus.
type Metrics struct {
	IsCompressed bool        `json:"isCompressed" codec:"isCompressed"`
	MetricGroup  MetricGroup `json:"metricGroup" codec:"metricGroup"`
}

// MetricGroup batches the samples of one reporting interval under a shared tag set.
type MetricGroup struct {
	Tags    map[string]any `json:"tags" codec:"tags"`
	Samples []MetricSample `json:"samples" codec:"samples"`
}

type MetricSample struct {
	Name      string `json:"name" codec:"name"`
	TimeStamp int64  `json:"timeStamp" codec:"timeStamp"` // Timestamp in nanoseconds
	Value     string `json:"value" codec:"value"`
	ValueType string `json:"valueType" codec:"valueType"`
}
