package contract_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/ua-bench/internal/contract"
	"github.com/daryltucker/ua-bench/internal/model"
)

const validEnvelope = `{
  "hasUa": true,
  "headers": {"user-agent": "Mozilla/5.0 (Linux; Android 10) Chrome Mobile"},
  "result": {
    "parsed": {
      "device": {"type": "mobile", "isMobile": true, "brand": null, "display": {"width": 1080}},
      "client": {"name": "Chrome Mobile", "version": "98.0", "isBot": false},
      "raw": {"anything": ["goes", 1]}
    },
    "err": null
  },
  "parse_time": 0.00042,
  "init_time": 1.5,
  "memory_used": 2097152,
  "version": "1.2.3"
}`

func TestDecode_Valid(t *testing.T) {
	t.Parallel()

	env, err := contract.Decode([]byte(validEnvelope))
	require.NoError(t, err)

	assert.True(t, env.HasUA)
	assert.Equal(t, "Mozilla/5.0 (Linux; Android 10) Chrome Mobile", env.Headers[contract.HeaderUserAgent])
	assert.InDelta(t, 0.00042, env.ParseTime, 1e-9)
	assert.InDelta(t, 1.5, env.InitTime, 1e-9)
	assert.Equal(t, int64(2097152), env.MemoryUsed)
	assert.Equal(t, "1.2.3", env.Version)
	assert.Nil(t, env.Result.Err)

	rec := env.Result.Parsed
	require.NotNil(t, rec)
	assert.Equal(t, "mobile", rec.Device.Type.String())
	assert.Equal(t, model.Unknown, rec.Device.Brand.State())
	assert.Equal(t, model.Unsupported, rec.Device.Manufacturer.State())
	assert.Equal(t, "1080", rec.Device.Display.Width.String())
	assert.Nil(t, rec.Platform)
	assert.JSONEq(t, `{"anything": ["goes", 1]}`, string(rec.Raw))
}

func TestDecode_LogicalError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  string
		want string
	}{
		{name: "string descriptor", err: `"no match"`, want: "no match"},
		{name: "object descriptor", err: `{"message": "boom", "code": 3}`, want: "boom"},
		{name: "object without message", err: `{"code": 3}`, want: `{"code": 3}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := `{"hasUa":true,"headers":{"user-agent":"x"},"result":{"parsed":null,"err":` + tc.err +
				`},"parse_time":0,"init_time":0,"memory_used":0,"version":""}`
			env, err := contract.Decode([]byte(doc))
			require.NoError(t, err)
			require.NotNil(t, env.Result.Err)
			assert.Equal(t, tc.want, env.Result.Err.Message)
			assert.Nil(t, env.Result.Parsed)
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	t.Parallel()

	replace := func(old, new string) string {
		return strings.Replace(validEnvelope, old, new, 1)
	}

	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "not json", doc: "Fatal error: Allowed memory size exhausted"},
		{name: "array", doc: "[]"},
		{name: "null", doc: "null"},
		{name: "two documents", doc: validEnvelope + validEnvelope},
		{name: "extra key", doc: replace(`"version": "1.2.3"`, `"version": "1.2.3", "extra": 1`)},
		{name: "missing key", doc: replace(`"memory_used": 2097152,`, ``)},
		{name: "hasUa not bool", doc: replace(`"hasUa": true`, `"hasUa": "true"`)},
		{name: "hasUa null", doc: replace(`"hasUa": true`, `"hasUa": null`)},
		{name: "headers without user-agent", doc: replace(`{"user-agent": "Mozilla/5.0 (Linux; Android 10) Chrome Mobile"}`, `{"ua": "x"}`)},
		{name: "negative parse time", doc: replace(`"parse_time": 0.00042`, `"parse_time": -1`)},
		{name: "parse time string", doc: replace(`"parse_time": 0.00042`, `"parse_time": "0.1"`)},
		{name: "fractional memory", doc: replace(`"memory_used": 2097152`, `"memory_used": 2.5`)},
		{name: "version number", doc: replace(`"version": "1.2.3"`, `"version": 1`)},
		{name: "result missing err", doc: replace(`"err": null`, `"error": null`)},
		{name: "unknown canonical field", doc: replace(`"isMobile": true`, `"isMobile": true, "colour": "red"`)},
		{name: "wrong canonical type", doc: replace(`"width": 1080`, `"width": "1080px"`)},
		{name: "miscased section", doc: replace(`"device": {`, `"DEVICE": {`)},
		{name: "miscased field", doc: replace(`"isMobile": true`, `"IsMobile": true`)},
		{name: "miscased nested field", doc: replace(`"width": 1080`, `"Width": 1080`)},
		{name: "repeated envelope key", doc: replace(`"hasUa": true`, `"hasUa": false, "hasUa": true`)},
		{name: "repeated record key", doc: replace(`"type": "mobile"`, `"type": "tablet", "type": "mobile"`)},
		{name: "repeated header", doc: replace(`{"user-agent": "Mozilla`, `{"user-agent": "x", "user-agent": "Mozilla`)},
		{name: "result null", doc: `{"hasUa":true,"headers":{"user-agent":"x"},"result":null,"parse_time":0,"init_time":0,"memory_used":0,"version":""}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := contract.Decode([]byte(tc.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, contract.ErrMalformed), "got %v", err)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	rec := model.CanonicalRecord{
		Client: &model.Client{Name: model.Some("Googlebot"), Version: model.None[string](), IsBot: model.Some(true)},
	}
	var buf bytes.Buffer
	require.NoError(t, contract.Encode(&buf, contract.Envelope{
		HasUA:      true,
		Headers:    map[string]string{contract.HeaderUserAgent: "Googlebot/2.1"},
		Result:     contract.Result{Parsed: &rec},
		ParseTime:  0.01,
		MemoryUsed: 1024,
		Version:    "v1",
	}))

	env, err := contract.Decode(buf.Bytes())
	require.NoError(t, err)
	require.NotNil(t, env.Result.Parsed)
	assert.Equal(t, rec, *env.Result.Parsed)
}

func TestArgs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"--ua", "Mozilla/5.0"}, contract.Args("Mozilla/5.0"))
}
