package httptransport

import "expvar"

var (
	metricJoinTotal        = expvar.NewInt("session_join_total")
	metricJoinErrors       = expvar.NewInt("session_join_errors_total")
	metricBulkJoinSessions = expvar.NewInt("bulk_join_sessions_total")

	metricAnswerSubmitTotal  = expvar.NewInt("answer_submit_total")
	metricAnswerSubmitErrors = expvar.NewInt("answer_submit_errors_total")

	metricSearchStartTotal = expvar.NewInt("pin_search_start_total")
	metricSearchStopTotal  = expvar.NewInt("pin_search_stop_total")
)
