/*
PURPOSE:
  Canonical Result Schema. The engine-agnostic shape every adapter output is
  mapped into, plus the pure normalization rules applied to it.

REQUIREMENTS:
  User-specified:
  - Sentinel policy: "unknown", "Other" and empty strings mean "no answer".
  - Bot tie-break: when an engine flags a bot, the robot identity wins and
    the ordinary browser name/version are cleared.
  - Numbers and versions pass through untouched.

  Implementation-discovered:
  - Normalize must be idempotent; it is applied by adapters (via Text) and
    again by the harness after decoding.
  - Sections are pointers so a whole section can be omitted or null.

ARCHITECTURE INTEGRATION:
  - Used by: internal/contract (encode/decode), internal/invoker,
    internal/compare, internal/output

ERROR HANDLING:
  - None (pure data + pure functions).

MAINTENANCE:
  - New canonical leaves must be added here, in normalize*, and in fields.go.
*/

package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CanonicalRecord is the normalized result for one (adapter, input) pair.
type CanonicalRecord struct {
	Device   *Device   `json:"device,omitempty"`
	Client   *Client   `json:"client,omitempty"`
	Platform *Platform `json:"platform,omitempty"`
	Engine   *Engine   `json:"engine,omitempty"`

	// Raw is the adapter's untouched native output. Never compared.
	Raw json.RawMessage `json:"raw,omitempty"`
}

type Device struct {
	Architecture    Opt[string] `json:"architecture,omitzero"`
	DeviceName      Opt[string] `json:"deviceName,omitzero"`
	MarketingName   Opt[string] `json:"marketingName,omitzero"`
	Manufacturer    Opt[string] `json:"manufacturer,omitzero"`
	Brand           Opt[string] `json:"brand,omitzero"`
	DualOrientation Opt[bool]   `json:"dualOrientation,omitzero"`
	SimCount        Opt[int]    `json:"simCount,omitzero"`
	Display         *Display    `json:"display,omitempty"`
	Type            Opt[string] `json:"type,omitzero"`
	IsMobile        Opt[bool]   `json:"isMobile,omitzero"`
	IsTV            Opt[bool]   `json:"isTv,omitzero"`
	Bits            Opt[int]    `json:"bits,omitzero"`
}

type Display struct {
	Width  Opt[int]     `json:"width,omitzero"`
	Height Opt[int]     `json:"height,omitzero"`
	Touch  Opt[bool]    `json:"touch,omitzero"`
	Type   Opt[string]  `json:"type,omitzero"`
	Size   Opt[float64] `json:"size,omitzero"`
}

// Client is the browser, app or bot that sent the request.
type Client struct {
	Name         Opt[string] `json:"name,omitzero"`
	Modus        Opt[string] `json:"modus,omitzero"`
	Version      Opt[string] `json:"version,omitzero"`
	Manufacturer Opt[string] `json:"manufacturer,omitzero"`
	Bits         Opt[int]    `json:"bits,omitzero"`
	IsBot        Opt[bool]   `json:"isBot,omitzero"`
	Type         Opt[string] `json:"type,omitzero"`
}

type Platform struct {
	Name          Opt[string] `json:"name,omitzero"`
	MarketingName Opt[string] `json:"marketingName,omitzero"`
	Version       Opt[string] `json:"version,omitzero"`
	Manufacturer  Opt[string] `json:"manufacturer,omitzero"`
	Bits          Opt[int]    `json:"bits,omitzero"`
}

// Engine is the rendering engine.
type Engine struct {
	Name         Opt[string] `json:"name,omitzero"`
	Version      Opt[string] `json:"version,omitzero"`
	Manufacturer Opt[string] `json:"manufacturer,omitzero"`
}

// IsSentinel reports whether a native string value means "no answer".
func IsSentinel(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unknown", "other":
		return true
	}
	return false
}

// Text maps a native string to a canonical field: sentinels become Unknown.
func Text(v string) Opt[string] {
	if IsSentinel(v) {
		return None[string]()
	}
	return Some(v)
}

// Identity is a native name/version pair.
type Identity struct {
	Name    string
	Version string
}

// ResolveClient picks the client identity from an engine that exposes both a
// browser and a robot signal. The robot identity wins when isBot is set, even
// if it is itself unknown.
func ResolveClient(browser, robot Identity, isBot bool) Client {
	pick := browser
	if isBot {
		pick = robot
	}
	return Client{
		Name:    Text(pick.Name),
		Version: Text(pick.Version),
		IsBot:   Some(isBot),
	}
}

// Normalize applies the sentinel policy to every string leaf and returns a
// copy. The input is not modified. Normalize(Normalize(r)) == Normalize(r).
func Normalize(r CanonicalRecord) CanonicalRecord {
	out := CanonicalRecord{Raw: bytes.Clone(r.Raw)}
	if r.Device != nil {
		d := *r.Device
		d.Architecture = text(d.Architecture)
		d.DeviceName = text(d.DeviceName)
		d.MarketingName = text(d.MarketingName)
		d.Manufacturer = text(d.Manufacturer)
		d.Brand = text(d.Brand)
		d.Type = text(d.Type)
		if d.Display != nil {
			disp := *d.Display
			disp.Type = text(disp.Type)
			d.Display = &disp
		}
		out.Device = &d
	}
	if r.Client != nil {
		c := *r.Client
		c.Name = text(c.Name)
		c.Modus = text(c.Modus)
		c.Version = text(c.Version)
		c.Manufacturer = text(c.Manufacturer)
		c.Type = text(c.Type)
		out.Client = &c
	}
	if r.Platform != nil {
		p := *r.Platform
		p.Name = text(p.Name)
		p.MarketingName = text(p.MarketingName)
		p.Version = text(p.Version)
		p.Manufacturer = text(p.Manufacturer)
		out.Platform = &p
	}
	if r.Engine != nil {
		e := *r.Engine
		e.Name = text(e.Name)
		e.Version = text(e.Version)
		e.Manufacturer = text(e.Manufacturer)
		out.Engine = &e
	}
	return out
}

func text(o Opt[string]) Opt[string] {
	if v, ok := o.Get(); ok {
		return Text(v)
	}
	return o
}
