package contract_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/ua-bench/internal/contract"
	"github.com/daryltucker/ua-bench/internal/model"
)

type recordingDetector struct {
	calls []string
	err   error
}

func (d *recordingDetector) Detect(ua string) (model.CanonicalRecord, error) {
	d.calls = append(d.calls, ua)
	if d.err != nil && ua != contract.WarmUpInput {
		return model.CanonicalRecord{}, d.err
	}
	return model.CanonicalRecord{
		Device: &model.Device{Type: model.Some("mobile"), Brand: model.Some("unknown")},
	}, nil
}

func TestServe_ScoredCall(t *testing.T) {
	t.Parallel()

	d := &recordingDetector{}
	var stdout, stderr bytes.Buffer
	code := contract.Serve([]string{"--ua", "Mozilla/5.0"}, &stdout, &stderr, "0.1.0", d)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, []string{contract.WarmUpInput, "Mozilla/5.0"}, d.calls, "warm-up must precede the scored call")

	env, err := contract.Decode(stdout.Bytes())
	require.NoError(t, err)
	assert.True(t, env.HasUA)
	assert.Equal(t, "Mozilla/5.0", env.Headers[contract.HeaderUserAgent])
	assert.Equal(t, "0.1.0", env.Version)
	assert.GreaterOrEqual(t, env.ParseTime, 0.0)
	assert.GreaterOrEqual(t, env.InitTime, 0.0)
	assert.Positive(t, env.MemoryUsed)

	require.NotNil(t, env.Result.Parsed)
	assert.Equal(t, "mobile", env.Result.Parsed.Device.Type.String())
	assert.Equal(t, model.Unknown, env.Result.Parsed.Device.Brand.State(), "served records are normalized")
}

func TestServe_WarmUpOnly(t *testing.T) {
	t.Parallel()

	d := &recordingDetector{}
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, contract.Serve(nil, &stdout, &stderr, "0.1.0", d))

	assert.Equal(t, []string{contract.WarmUpInput}, d.calls)

	env, err := contract.Decode(stdout.Bytes())
	require.NoError(t, err)
	assert.False(t, env.HasUA)
	assert.Nil(t, env.Result.Parsed)
	assert.Nil(t, env.Result.Err)
	assert.Zero(t, env.ParseTime)
}

func TestServe_LogicalError(t *testing.T) {
	t.Parallel()

	d := &recordingDetector{err: errors.New("no classification")}
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, contract.Serve([]string{"--ua", "???"}, &stdout, &stderr, "0.1.0", d))

	env, err := contract.Decode(stdout.Bytes())
	require.NoError(t, err)
	require.NotNil(t, env.Result.Err)
	assert.Equal(t, "no classification", env.Result.Err.Message)
	assert.Nil(t, env.Result.Parsed)
}

func TestServe_EmptyInputIsStillScored(t *testing.T) {
	t.Parallel()

	d := &recordingDetector{}
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, contract.Serve([]string{"--ua", ""}, &stdout, &stderr, "0.1.0", d))

	env, err := contract.Decode(stdout.Bytes())
	require.NoError(t, err)
	assert.True(t, env.HasUA)
	assert.Len(t, d.calls, 2)
}

func TestServe_BadFlags(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := contract.Serve([]string{"--nope"}, &stdout, &stderr, "0.1.0", &recordingDetector{})
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout.String())
}
