package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/config"
	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/exporter"
)

const datasetBody = "\ufeff\"statistic\",Statistic Label,TLIST(A1),Year,Sex,UNIT,VALUE\n" +
	"EDA14C01,Entrants to First Year of Junior Cycle,2010,2010,Male,Number,100\n" +
	"EDA14C01,Entrants to First Year of Junior Cycle,2014,2014,Male,Number,150\n" +
	"EDA14C01,Entrants to First Year of Junior Cycle,2016,2016,Female,Number,130\n" +
	"EDA14C02,First Year Retention Rate,2010,2010,Male,%,96.5\n" +
	"EDA14C03,Total Students Enrolled,2025,2025,Male,Number,999\n"

func testConfig(url, dir string) *config.Config {
	cfg := config.Default()
	cfg.Dataset.URL = url
	cfg.Dataset.Timeout = 5 * time.Second
	cfg.Output.Dir = dir
	cfg.Output.BaseName = "processed_student_data"
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(datasetBody))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "transformed")
	runner := NewRunner(testConfig(server.URL, dir), nil)

	require.NoError(t, runner.Run(context.Background()))

	summaries, err := exporter.ReadParquet(filepath.Join(dir, "processed_student_data.parquet"))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "2010-2014", summaries[0].FiveYearPeriod)
	assert.Equal(t, "Male", summaries[0].SexCategory)
	require.NotNil(t, summaries[0].RetentionCount)
	assert.EqualValues(t, 250, *summaries[0].RetentionCount)

	assert.Equal(t, "2015-2019", summaries[1].FiveYearPeriod)
	assert.Equal(t, "Female", summaries[1].SexCategory)
	require.NotNil(t, summaries[1].RetentionCount)
	assert.EqualValues(t, 130, *summaries[1].RetentionCount)

	fromCSV, err := exporter.ReadCSV(filepath.Join(dir, "processed_student_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, summaries, fromCSV)
}

func TestRun_AbortsWhenLoadFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "transformed")
	runner := NewRunner(testConfig(server.URL, dir), nil)

	// Expected failure ends the run normally, with nothing written
	require.NoError(t, runner.Run(context.Background()))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NoFilesWhenNothingSurvivesFiltering(t *testing.T) {
	body := "statistic,Statistic Label,Year,Sex,UNIT,VALUE\n" +
		"EDA14C03,Total Students Enrolled,2010,Male,Number,999\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "transformed")
	runner := NewRunner(testConfig(server.URL, dir), nil)

	require.NoError(t, runner.Run(context.Background()))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_EmptyDatasetBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "transformed")
	runner := NewRunner(testConfig(server.URL, dir), nil)

	require.NoError(t, runner.Run(context.Background()))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
