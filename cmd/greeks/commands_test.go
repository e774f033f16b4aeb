package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainCSV = `strike,call_oi,put_oi,call_iv,put_iv
25000,300,800,16,17
25100,500,500,15,15.5
25200,900,100,14,15
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.csv")
	require.NoError(t, os.WriteFile(path, []byte(chainCSV), 0o600))
	return path
}

func TestPriceCommand(t *testing.T) {
	out, err := run(t, "price", "--spot", "100", "--strike", "100", "--days", "365", "--vol", "20", "--rate", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "10.45")
	assert.Contains(t, out, "5.57")

	_, err = run(t, "price", "--spot", "100", "--strike", "100", "--days", "0", "--vol", "20")
	assert.ErrorContains(t, err, "days_to_expiry")
}

func TestIVCommand(t *testing.T) {
	out, err := run(t, "iv", "--type", "CE", "--premium", "10.4506", "--spot", "100", "--strike", "100", "--days", "365", "--rate", "5")
	require.NoError(t, err)
	assert.Equal(t, "20\n", out)
}

func TestChainCommand(t *testing.T) {
	out, err := run(t, "chain", "--csv", writeCSV(t), "--spot", "25142", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "25100")
	assert.Contains(t, out, "max pain 25100  pcr 0.82")
}

func TestMaxPainCommand(t *testing.T) {
	out, err := run(t, "maxpain", "--csv", writeCSV(t))
	require.NoError(t, err)
	assert.Contains(t, out, "40000")
	assert.Contains(t, out, "max pain 25100  pcr 0.82")

	_, err = run(t, "maxpain", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
