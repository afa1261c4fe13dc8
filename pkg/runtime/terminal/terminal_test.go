package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/agri-atlas/pkg/export"
	"github.com/de-tools/agri-atlas/pkg/services/analysis"
	"github.com/de-tools/agri-atlas/pkg/services/assistant"
)

const goaDataset = `regions:
  - {id: goa, name: Goa}
datasets:
  goa:
    2023:
      groundwater:
        annual_availability: 20000
        annual_extraction: 5000
        average_depth: 4.2
        depth_ranges:
          - {range: "0-5 m", count: 30, percentage: 60.0}
          - {range: "5-10 m", count: 20, percentage: 40.0}
`

type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T, extra string) testEnv {
	t.Helper()
	return testEnv{dir: t.TempDir()}.withConfig(t, "agri-atlas.yaml", extra)
}

// withConfig writes another config file sharing the env's export directory
// and database.
func (e testEnv) withConfig(t *testing.T, name, extra string) testEnv {
	t.Helper()
	content := "log:\n  level: error\nexport:\n  dir: " + filepath.Join(e.dir, "exports") +
		"\nduckdb:\n  path: " + filepath.Join(e.dir, "atlas.duckdb") + "\n" + extra
	e.config = filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(e.config, []byte(content), 0o644))
	return e
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cli := NewCLI(Options{Output: &out, ErrOutput: &errOut})
	err := cli.Run(context.Background(), append([]string{"--config", e.config}, args...))
	return out.String(), err
}

func TestCLI_Listings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "regions",
			args: []string{"regions"},
			want: []string{"| ID ", "| bihar ", "2022, 2023", "Punjab"},
		},
		{
			name: "reports",
			args: []string{"reports"},
			want: []string{"groundwater", "Groundwater Status", "seasonal", "Seasonal Cropping Pattern"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			env := newTestEnv(t, "")

			// When
			out, err := env.run(t, tt.args...)

			// Then
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCLI_Show(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
		errText string
	}{
		{
			name: "single region",
			args: []string{"show", "seasonal", "--region", "bihar", "--year", "2023"},
			want: "Seasonal Cropping Pattern",
		},
		{
			name: "report type is case insensitive",
			args: []string{"show", "Groundwater", "--year", "2023"},
			want: "Groundwater Status",
		},
		{
			name:    "unknown report type",
			args:    []string{"show", "rainfall", "--year", "2023"},
			wantErr: analysis.ErrUnknownReport,
		},
		{
			name:    "year is required",
			args:    []string{"show", "seasonal"},
			errText: "required flag",
		},
		{
			name:    "invalid season",
			args:    []string{"show", "seasonal", "--year", "2023", "--season", "monsoon"},
			errText: "unknown season",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			env := newTestEnv(t, "")

			// When
			out, err := env.run(t, tt.args...)

			// Then
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
				assert.Contains(t, out, tt.want)
			}
		})
	}
}

func TestCLI_Export_WritesEachFormat(t *testing.T) {
	// Given
	env := newTestEnv(t, "")
	dir := filepath.Join(env.dir, "out")

	// When
	out, err := env.run(t, "export", "landholding", "--region", "bihar", "--year", "2023",
		"--format", "csv,html", "--dir", dir)

	// Then
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Len(t, names, 2)
	for _, n := range names {
		assert.Contains(t, out, filepath.Join(dir, n))
	}
}

func TestCLI_Export_UnknownFormat(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "export", "landholding", "--year", "2023", "--format", "pdf")

	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestCLI_ImportThenReadFromDuckDB(t *testing.T) {
	// Given
	env := newTestEnv(t, "")
	dataset := filepath.Join(env.dir, "goa.yaml")
	require.NoError(t, os.WriteFile(dataset, []byte(goaDataset), 0o644))

	// When
	out, err := env.run(t, "import", dataset)

	// Then
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 regions, 1 snapshots")

	// Given
	duck := env.withConfig(t, "duck.yaml", "dataset:\n  source: duckdb\n")

	// When
	out, err = duck.run(t, "regions")

	// Then
	require.NoError(t, err)
	assert.Contains(t, out, "| goa ")
	assert.NotContains(t, out, "bihar")
}

func TestCLI_Import_RejectsInvalidDataset(t *testing.T) {
	// Given
	env := newTestEnv(t, "")
	dataset := filepath.Join(env.dir, "bad.yaml")
	bad := bytes.Replace([]byte(goaDataset), []byte("percentage: 40.0"), []byte("percentage: 10.0"), 1)
	require.NoError(t, os.WriteFile(dataset, bad, 0o644))

	// When
	_, err := env.run(t, "import", dataset)

	// Then
	require.Error(t, err)
}

func TestCLI_Assistant(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, "")

		_, err := env.run(t, "ask", "--year", "2023", "when to sow wheat?")

		assert.ErrorIs(t, err, assistant.ErrNotConfigured)
	})

	t.Run("ask", func(t *testing.T) {
		// Given
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ask", r.URL.Path)
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"answer":"Sow after the first week of November."}`))
		}))
		defer srv.Close()
		env := newTestEnv(t, "assistant:\n  base_url: "+srv.URL+"\n")

		// When
		out, err := env.run(t, "ask", "--region", "punjab", "--year", "2023", "when", "to", "sow", "wheat?")

		// Then
		require.NoError(t, err)
		assert.Equal(t, "Sow after the first week of November.\n", out)
		assert.Equal(t, "when to sow wheat?", got["prompt"])
		assert.Equal(t, "punjab", got["region"])
	})

	t.Run("predict prints raw response without answer", func(t *testing.T) {
		// Given
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/predict", r.URL.Path)
			_, _ = w.Write([]byte(`{"yield":42}`))
		}))
		defer srv.Close()
		env := newTestEnv(t, "assistant:\n  base_url: "+srv.URL+"\n")

		// When
		out, err := env.run(t, "predict", "--region", "punjab", "--year", "2024")

		// Then
		require.NoError(t, err)
		assert.JSONEq(t, `{"yield":42}`, out)
	})
}

func TestCLI_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, "dataset:\n  source: postgres\n")

	_, err := env.run(t, "regions")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset.source")
}
