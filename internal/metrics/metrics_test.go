// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPipelineRun(t *testing.T) {
	successes := testutil.ToFloat64(PipelineRuns.WithLabelValues("success"))
	failures := testutil.ToFloat64(PipelineRuns.WithLabelValues("failure"))

	RecordPipelineRun(100*time.Millisecond, nil)
	RecordPipelineRun(50*time.Millisecond, errors.New("source missing"))

	if got := testutil.ToFloat64(PipelineRuns.WithLabelValues("success")); got != successes+1 {
		t.Errorf("success runs = %v, want %v", got, successes+1)
	}
	if got := testutil.ToFloat64(PipelineRuns.WithLabelValues("failure")); got != failures+1 {
		t.Errorf("failure runs = %v, want %v", got, failures+1)
	}
}

func TestRecordDrops(t *testing.T) {
	emptyField := testutil.ToFloat64(PipelineRowsDropped.WithLabelValues("empty_field"))
	badYear := testutil.ToFloat64(PipelineRowsDropped.WithLabelValues("bad_year"))
	shortPlot := testutil.ToFloat64(PipelineRowsDropped.WithLabelValues("short_plot"))

	RecordDrops(3, 2, 59)

	if got := testutil.ToFloat64(PipelineRowsDropped.WithLabelValues("empty_field")); got != emptyField+3 {
		t.Errorf("empty_field drops = %v, want %v", got, emptyField+3)
	}
	if got := testutil.ToFloat64(PipelineRowsDropped.WithLabelValues("bad_year")); got != badYear+2 {
		t.Errorf("bad_year drops = %v, want %v", got, badYear+2)
	}
	if got := testutil.ToFloat64(PipelineRowsDropped.WithLabelValues("short_plot")); got != shortPlot+59 {
		t.Errorf("short_plot drops = %v, want %v", got, shortPlot+59)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/search", "200"))

	RecordAPIRequest("GET", "/api/v1/search", "200", 5*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/search", "200")); got != before+1 {
		t.Errorf("api requests = %v, want %v", got, before+1)
	}
}

func TestQueryEngineRecordsGauge(t *testing.T) {
	QueryEngineRecords.Set(441)
	if got := testutil.ToFloat64(QueryEngineRecords); got != 441 {
		t.Errorf("query_engine_records = %v, want 441", got)
	}
}
