package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = "statistic,Statistic Label,UNIT,Year,Sex,VALUE\n" +
	"EDA14,Entrants to First Year of Junior Cycle,Number,2010,Male,100\n" +
	"EDA14,Entrants to First Year of Junior Cycle,Number,2011,Female,120\n"

func newTestLoader(url string) *Loader {
	return NewLoader(url, 5*time.Second, nil)
}

func TestLoad_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	table, err := newTestLoader(server.URL).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"statistic", "Statistic Label", "UNIT", "Year", "Sex", "VALUE"}, table.Headers)
	assert.Equal(t, "100", table.Rows[0][5])
}

func TestLoad_RepairsBOMHeader(t *testing.T) {
	tests := []struct {
		name      string
		firstCell string
	}{
		{name: "utf-8 BOM prefix", firstCell: "\ufeffstatistic"},
		{name: "BOM plus stray quotes", firstCell: "\ufeff\"statistic\""},
		{name: "stray quotes only", firstCell: "\"\"statistic\"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.firstCell + ",Statistic Label,UNIT,Year,Sex,VALUE\n" +
				"EDA14,Entrants to First Year,Number,2010,Male,100\n"
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			table, err := newTestLoader(server.URL).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "statistic", table.Headers[0])
		})
	}
}

func TestLoad_CleanHeaderLeftAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("STATISTIC,Year\nEDA14,2010\n"))
	}))
	defer server.Close()

	table, err := newTestLoader(server.URL).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "STATISTIC", table.Headers[0])
}

func TestLoad_TransportFailures(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		table, err := newTestLoader(server.URL).Load(context.Background())
		assert.Nil(t, table)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindTransport, loadErr.Kind)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		table, err := newTestLoader(url).Load(context.Background())
		assert.Nil(t, table)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, KindTransport, loadErr.Kind)
	})
}

func TestLoad_ParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with an empty body: no header row to decode
	}))
	defer server.Close()

	table, err := newTestLoader(server.URL).Load(context.Background())
	assert.Nil(t, table)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, KindParse, loadErr.Kind)
}

func TestLoadError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &LoadError{Kind: KindTransport, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transport")
}
