package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/daryltucker/ua-bench/internal/model"
)

// ErrMalformed is wrapped by every envelope validation error.
var ErrMalformed = errors.New("malformed adapter output")

// Envelope is the single JSON document an adapter writes to stdout.
type Envelope struct {
	HasUA      bool              `json:"hasUa"`
	Headers    map[string]string `json:"headers"`
	Result     Result            `json:"result"`
	ParseTime  float64           `json:"parse_time"`
	InitTime   float64           `json:"init_time"`
	MemoryUsed int64             `json:"memory_used"`
	Version    string            `json:"version"`
}

// Result carries either a canonical record or the adapter's own parse error.
type Result struct {
	Parsed *model.CanonicalRecord `json:"parsed"`
	Err    *ErrorDescriptor       `json:"err"`
}

// ErrorDescriptor is the adapter-reported logical parse error. On the wire
// it is either a plain string or an object with a "message" field.
type ErrorDescriptor struct {
	Message string `json:"message"`
}

func (e *ErrorDescriptor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("error descriptor must be a string or an object: %w", err)
	}
	if msg, ok := obj["message"]; ok {
		if err := json.Unmarshal(msg, &e.Message); err != nil {
			return fmt.Errorf("error descriptor message: %w", err)
		}
		return nil
	}
	e.Message = string(data)
	return nil
}

var envelopeKeys = []string{"hasUa", "headers", "result", "parse_time", "init_time", "memory_used", "version"}

var resultKeys = []string{"parsed", "err"}

// Encode writes env as a single JSON document.
func Encode(w io.Writer, env Envelope) error {
	if env.Headers == nil {
		env.Headers = map[string]string{HeaderUserAgent: ""}
	}
	return json.NewEncoder(w).Encode(env)
}

// Decode parses and validates adapter stdout. It accepts exactly one JSON
// document with exactly the protocol keys; anything else is ErrMalformed.
// The returned record is not normalized.
func Decode(data []byte) (Envelope, error) {
	var env Envelope

	top, err := decodeObject(data, envelopeKeys)
	if err != nil {
		return env, err
	}

	if err := strictScalar(top["hasUa"], &env.HasUA, "hasUa"); err != nil {
		return env, err
	}
	if err := decodeHeaders(top["headers"], &env); err != nil {
		return env, err
	}
	if err := decodeResult(top["result"], &env); err != nil {
		return env, err
	}
	if env.ParseTime, err = seconds(top["parse_time"], "parse_time"); err != nil {
		return env, err
	}
	if env.InitTime, err = seconds(top["init_time"], "init_time"); err != nil {
		return env, err
	}
	if env.MemoryUsed, err = bytesUsed(top["memory_used"]); err != nil {
		return env, err
	}
	if err := strictScalar(top["version"], &env.Version, "version"); err != nil {
		return env, err
	}
	return env, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// readObject reads exactly one JSON object, keeping each value raw. Repeated
// keys and trailing data are errors.
func readObject(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	obj := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("not a JSON object: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a key, got %v", tok)
		}
		if _, dup := obj[key]; dup {
			return nil, fmt.Errorf("repeated key %q", key)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		obj[key] = val
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON document")
	}
	return obj, nil
}

// decodeObject reads a single JSON object and checks its key set.
func decodeObject(data []byte, keys []string) (map[string]json.RawMessage, error) {
	obj, err := readObject(data)
	if err != nil {
		return nil, malformed("%v", err)
	}

	var missing, extra []string
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range obj {
		if !slices.Contains(keys, k) {
			extra = append(extra, k)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, malformed("missing keys: %s", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		slices.Sort(extra)
		return nil, malformed("unexpected keys: %s", strings.Join(extra, ", "))
	}
	return obj, nil
}

// checkRecordKeys walks raw against the json tags of t. encoding/json would
// accept a key that matches a tag only case-insensitively; this does not.
// Pointer-to-struct fields are sections and are checked recursively.
func checkRecordKeys(raw json.RawMessage, t reflect.Type, path string) error {
	obj, err := readObject(raw)
	if err != nil {
		return malformed("%s: %v", path, err)
	}
	fields := jsonFields(t)
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		ft, ok := fields[key]
		if !ok {
			return malformed("%s: unexpected key %q", path, key)
		}
		if ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct && !isNull(obj[key]) {
			if err := checkRecordKeys(obj[key], ft.Elem(), path+"."+key); err != nil {
				return err
			}
		}
	}
	return nil
}

func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for _, f := range reflect.VisibleFields(t) {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		fields[name] = f.Type
	}
	return fields
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func strictScalar[T any](raw json.RawMessage, dst *T, key string) error {
	if isNull(raw) {
		return malformed("%s must not be null", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return malformed("%s: %v", key, err)
	}
	return nil
}

func decodeHeaders(raw json.RawMessage, env *Envelope) error {
	if !isNull(raw) {
		if _, err := readObject(raw); err != nil {
			return malformed("headers: %v", err)
		}
	}
	if err := strictScalar(raw, &env.Headers, "headers"); err != nil {
		return err
	}
	if _, ok := env.Headers[HeaderUserAgent]; !ok {
		return malformed("headers has no %q key", HeaderUserAgent)
	}
	return nil
}

func decodeResult(raw json.RawMessage, env *Envelope) error {
	if isNull(raw) {
		return malformed("result must not be null")
	}
	obj, err := decodeObject(raw, resultKeys)
	if err != nil {
		return fmt.Errorf("result: %w", err)
	}

	if !isNull(obj["parsed"]) {
		if err := checkRecordKeys(obj["parsed"], reflect.TypeFor[model.CanonicalRecord](), "result.parsed"); err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(obj["parsed"]))
		dec.DisallowUnknownFields()
		var rec model.CanonicalRecord
		if err := dec.Decode(&rec); err != nil {
			return malformed("result.parsed: %v", err)
		}
		env.Result.Parsed = &rec
	}

	if !isNull(obj["err"]) {
		var desc ErrorDescriptor
		if err := json.Unmarshal(obj["err"], &desc); err != nil {
			return malformed("result.err: %v", err)
		}
		env.Result.Err = &desc
	}
	return nil
}

func number(raw json.RawMessage, key string) (json.Number, error) {
	if isNull(raw) {
		return "", malformed("%s must not be null", key)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", malformed("%s: %v", key, err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", malformed("%s must be a number, got %T", key, v)
	}
	return n, nil
}

func seconds(raw json.RawMessage, key string) (float64, error) {
	n, err := number(raw, key)
	if err != nil {
		return 0, err
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, malformed("%s: invalid number %q", key, n)
	}
	if f < 0 {
		return 0, malformed("%s must be >= 0, got %v", key, f)
	}
	return f, nil
}

func bytesUsed(raw json.RawMessage) (int64, error) {
	n, err := number(raw, "memory_used")
	if err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, malformed("memory_used must be an integer, got %q", n)
	}
	if v < 0 {
		return 0, malformed("memory_used must be >= 0, got %d", v)
	}
	return v, nil
}
