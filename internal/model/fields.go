package model

// Field is one comparable leaf of the canonical schema, addressed by its
// dotted JSON path (e.g. "device.display.width").
type Field struct {
	Path  string
	value func(*CanonicalRecord) (string, State)
}

// Value returns the canonical string form and presence state of the field.
// A nil record or a missing section yields Unsupported.
func (f Field) Value(r *CanonicalRecord) (string, State) {
	if r == nil {
		return "", Unsupported
	}
	return f.value(r)
}

// Fields lists every comparable canonical leaf in schema order. Raw is not
// part of it.
var Fields = []Field{
	deviceField("architecture", func(d *Device) Opt[string] { return d.Architecture }),
	deviceField("deviceName", func(d *Device) Opt[string] { return d.DeviceName }),
	deviceField("marketingName", func(d *Device) Opt[string] { return d.MarketingName }),
	deviceField("manufacturer", func(d *Device) Opt[string] { return d.Manufacturer }),
	deviceField("brand", func(d *Device) Opt[string] { return d.Brand }),
	deviceField("dualOrientation", func(d *Device) Opt[bool] { return d.DualOrientation }),
	deviceField("simCount", func(d *Device) Opt[int] { return d.SimCount }),
	displayField("width", func(d *Display) Opt[int] { return d.Width }),
	displayField("height", func(d *Display) Opt[int] { return d.Height }),
	displayField("touch", func(d *Display) Opt[bool] { return d.Touch }),
	displayField("type", func(d *Display) Opt[string] { return d.Type }),
	displayField("size", func(d *Display) Opt[float64] { return d.Size }),
	deviceField("type", func(d *Device) Opt[string] { return d.Type }),
	deviceField("isMobile", func(d *Device) Opt[bool] { return d.IsMobile }),
	deviceField("isTv", func(d *Device) Opt[bool] { return d.IsTV }),
	deviceField("bits", func(d *Device) Opt[int] { return d.Bits }),

	clientField("name", func(c *Client) Opt[string] { return c.Name }),
	clientField("modus", func(c *Client) Opt[string] { return c.Modus }),
	clientField("version", func(c *Client) Opt[string] { return c.Version }),
	clientField("manufacturer", func(c *Client) Opt[string] { return c.Manufacturer }),
	clientField("bits", func(c *Client) Opt[int] { return c.Bits }),
	clientField("isBot", func(c *Client) Opt[bool] { return c.IsBot }),
	clientField("type", func(c *Client) Opt[string] { return c.Type }),

	platformField("name", func(p *Platform) Opt[string] { return p.Name }),
	platformField("marketingName", func(p *Platform) Opt[string] { return p.MarketingName }),
	platformField("version", func(p *Platform) Opt[string] { return p.Version }),
	platformField("manufacturer", func(p *Platform) Opt[string] { return p.Manufacturer }),
	platformField("bits", func(p *Platform) Opt[int] { return p.Bits }),

	engineField("name", func(e *Engine) Opt[string] { return e.Name }),
	engineField("version", func(e *Engine) Opt[string] { return e.Version }),
	engineField("manufacturer", func(e *Engine) Opt[string] { return e.Manufacturer }),
}

// FieldByPath looks a field up by its dotted path.
func FieldByPath(path string) (Field, bool) {
	for _, f := range Fields {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

func render[T comparable](o Opt[T]) (string, State) {
	return o.String(), o.State()
}

func deviceField[T comparable](name string, get func(*Device) Opt[T]) Field {
	return Field{Path: "device." + name, value: func(r *CanonicalRecord) (string, State) {
		if r.Device == nil {
			return "", Unsupported
		}
		return render(get(r.Device))
	}}
}

func displayField[T comparable](name string, get func(*Display) Opt[T]) Field {
	return Field{Path: "device.display." + name, value: func(r *CanonicalRecord) (string, State) {
		if r.Device == nil || r.Device.Display == nil {
			return "", Unsupported
		}
		return render(get(r.Device.Display))
	}}
}

func clientField[T comparable](name string, get func(*Client) Opt[T]) Field {
	return Field{Path: "client." + name, value: func(r *CanonicalRecord) (string, State) {
		if r.Client == nil {
			return "", Unsupported
		}
		return render(get(r.Client))
	}}
}

func platformField[T comparable](name string, get func(*Platform) Opt[T]) Field {
	return Field{Path: "platform." + name, value: func(r *CanonicalRecord) (string, State) {
		if r.Platform == nil {
			return "", Unsupported
		}
		return render(get(r.Platform))
	}}
}

func engineField[T comparable](name string, get func(*Engine) Opt[T]) Field {
	return Field{Path: "engine." + name, value: func(r *CanonicalRecord) (string, State) {
		if r.Engine == nil {
			return "", Unsupported
		}
		return render(get(r.Engine))
	}}
}
