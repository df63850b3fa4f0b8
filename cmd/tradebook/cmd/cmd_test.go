package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFills = `id,symbol,side,quantity,price,filled_time,commission
f1,AAPL,BUY,10,100,2024-03-04T14:30:00Z,0
f2,AAPL,SELL,10,95,2024-03-04T15:30:00Z,0
f3,MSFT,BUY,10,10.00,2024-03-05T14:30:00Z,0
`

const testOrders = `symbol,side,type,quantity,stop_price,placed_time
MSFT,SELL,STOP,10,9.50,2024-03-05T14:30:01Z
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	ordersPath := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(fillsPath, []byte(testFills), 0644))
	require.NoError(t, os.WriteFile(ordersPath, []byte(testOrders), 0644))

	cfg := config.Default()
	cfg.Input.FillsFile = fillsPath
	cfg.Input.OrdersFile = ordersPath
	cfg.Journal.DBPath = filepath.Join(dir, "book.db")
	cfgPath := filepath.Join(dir, "tradebook.yaml")
	require.NoError(t, cfg.SaveToFile(cfgPath))

	out, err := execute(t, "import", "-c", cfgPath, "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode:          LOW")
	assert.Contains(t, out, "MSFT")

	// idempotent
	_, err = execute(t, "import", "-c", cfgPath, "--quiet")
	require.NoError(t, err)

	out, err = execute(t, "journal", "list", "-c", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "AAPL")
	assert.Contains(t, lines[0], "CLOSED")
	assert.Contains(t, lines[1], "ACTIVE")

	out, err = execute(t, "journal", "day", "2024-03-04", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, ":OUTCOME: LOSS")

	out, err = execute(t, "journal", "range", "2024-03-01", "2024-03-05", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, ":OUTCOME: LOSS")

	out, err = execute(t, "journal", "range", "2024-03-05", "2024-03-06", "-c", cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "AAPL")

	_, err = execute(t, "journal", "range", "2024-03-05", "2024-03-01", "-c", cfgPath)
	assert.Error(t, err)

	out, err = execute(t, "journal", "last", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Trades:        2 (1 closed)")

	out, err = execute(t, "risk", "--json", "-c", cfgPath)
	require.NoError(t, err)
	var rs risk.RiskState
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	assert.Equal(t, risk.Low, rs.Mode)
	assert.InDelta(t, 9950, rs.Equity, 1e-9)
	assert.Equal(t, risk.Low, rs.Forecast.IfWin.Mode)
	assert.Equal(t, 1, rs.Forecast.IfWin.LowWinsProgress)
	riskJSON = false

	out, err = execute(t, "daily", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-04")
	assert.Contains(t, out, "HIGH -> LOW")

	out, err = execute(t, "stats", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Losses:        1")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradebook.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "HIGH 3.00% / LOW 0.10%")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tradebook version "+version)
}

func TestWatchChainSkipsOverlap(t *testing.T) {
	var buf bytes.Buffer
	var runs int32
	started := make(chan struct{})
	release := make(chan struct{})

	job := watchChain(zerolog.New(&buf)).Then(cron.FuncJob(func() {
		atomic.AddInt32(&runs, 1)
		close(started)
		<-release
	}))

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// a tick that lands while the first run is busy returns at once
	job.Run()
	close(release)
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.Contains(t, buf.String(), "cron: skip")
}

func TestLogLevelFromDotenv(t *testing.T) {
	t.Setenv("TRADEBOOK_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("TRADEBOOK_LOG_LEVEL"))
	rootCmd.PersistentFlags().Lookup("log-level").Changed = false

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TRADEBOOK_LOG_LEVEL=loud\n"), 0644))

	_, err := execute(t, "version", "--env", envPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")

	require.NoError(t, os.Unsetenv("TRADEBOOK_LOG_LEVEL"))
	_, err = execute(t, "version", "--env", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "info", logLevel)
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "loud")
	assert.Error(t, err)
	logLevel = "info"
}
