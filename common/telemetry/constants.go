package telemetry

const (
	MetricReadingMessageCount = "pp_in_reading_messages_count"
	MetricReadingsScored      = "pp_readings_scored_count"
	MetricAnomaliesFlagged    = "pp_anomalies_flagged_count"
	MetricTasksAutoCreated    = "pp_tasks_autocreated_count"
	MetricTasksDedupSkipped   = "pp_tasks_dedup_skipped_count"
	MetricModelPromotions     = "pp_model_promotions_count"
	MetricModelRollbacks      = "pp_model_rollbacks_count"
	MetricExportErrors        = "pp_export_errors_count"
	CompletedJobsTime         = "pp_completed_jobs_training_time_mins"
	FailedJobsTime            = "pp_failed_jobs_training_time_mins"
	CompletedJobsCount        = "pp_completed_jobs_count"
	FailedJobsCount           = "pp_failed_jobs_count"
)
