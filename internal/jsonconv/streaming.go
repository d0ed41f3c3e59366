package jsonconv

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-faster/jx"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/cvalue"
	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// StreamingConverter is a single-pass token parser from JSON bytes to a
// CValue checked against a target CType, enforcing StreamingLimits as
// tokens are consumed. Grounded on jordigilh-kubernaut's ogen-generated
// request decoders, which drive the same go-faster/jx Decoder token by
// token against a known target shape.
type StreamingConverter struct {
	limits StreamingLimits
}

// NewStreamingConverter constructs a StreamingConverter bounded by limits.
func NewStreamingConverter(limits StreamingLimits) *StreamingConverter {
	return &StreamingConverter{limits: limits}
}

// Convert parses data against target, releasing its underlying decoder on
// every exit path (jx.Decoder holds no resources beyond the byte slice
// itself, so "release" here is simply letting it go out of scope — no
// pooled reader is checked out before failure can leak it).
func (c *StreamingConverter) Convert(data []byte, target ctype.CType) (cvalue.CValue, error) {
	if len(data) > c.limits.MaxPayloadSize {
		return cvalue.CValue{}, cerrors.NewStreamingError("Payload too large")
	}

	p := &parseState{limits: c.limits}
	d := jx.DecodeBytes(data)
	return p.parseValue(d, target, 0)
}

// parseState carries the counters shared across one recursive parse: an
// element count accumulated across every CList and every skipped array
// (per §4.D, skip recursion still counts against the limits), and the
// current object/array nesting depth.
type parseState struct {
	limits     StreamingLimits
	arrayElems int
	depth      int
}

func (p *parseState) enterNesting() error {
	p.depth++
	if p.depth > p.limits.MaxNestingDepth {
		return cerrors.NewStreamingError("Nesting depth limit exceeded")
	}
	return nil
}

func (p *parseState) exitNesting() {
	p.depth--
}

func (p *parseState) countElement() error {
	p.arrayElems++
	if p.arrayElems > p.limits.MaxArrayElements {
		return cerrors.NewStreamingError("Array element limit exceeded")
	}
	return nil
}

func (p *parseState) parseValue(d *jx.Decoder, target ctype.CType, depth int) (cvalue.CValue, error) {
	switch target.Kind() {
	case ctype.KInt:
		n, err := d.Int64()
		if err != nil {
			return cvalue.CValue{}, cerrors.NewStreamingError(err.Error())
		}
		return cvalue.Int(n), nil

	case ctype.KFloat:
		f, err := d.Float64()
		if err != nil {
			return cvalue.CValue{}, cerrors.NewStreamingError(err.Error())
		}
		return cvalue.Float(f), nil

	case ctype.KString:
		s, err := d.Str()
		if err != nil {
			return cvalue.CValue{}, cerrors.NewStreamingError(err.Error())
		}
		return cvalue.String(s), nil

	case ctype.KBoolean:
		b, err := d.Bool()
		if err != nil {
			return cvalue.CValue{}, cerrors.NewStreamingError(err.Error())
		}
		return cvalue.Boolean(b), nil

	case ctype.KOptional:
		typ, err := d.Next()
		if err != nil {
			return cvalue.CValue{}, cerrors.NewStreamingError(err.Error())
		}
		if typ == jx.Null {
			if err := d.Null(); err != nil {
				return cvalue.CValue{}, cerrors.NewStreamingError(err.Error())
			}
			return cvalue.None(target.Inner()), nil
		}
		inner, err := p.parseValue(d, target.Inner(), depth)
		if err != nil {
			return cvalue.CValue{}, err
		}
		return cvalue.Some(target.Inner(), inner), nil

	case ctype.KList:
		return p.parseList(d, target, depth)

	case ctype.KProduct:
		return p.parseProduct(d, target, depth)

	case ctype.KUnion:
		return p.parseUnion(d, target, depth)

	default:
		return cvalue.CValue{}, cerrors.NewStreamingError("unsupported CType kind")
	}
}

func (p *parseState) parseList(d *jx.Decoder, target ctype.CType, depth int) (cvalue.CValue, error) {
	if err := p.enterNesting(); err != nil {
		return cvalue.CValue{}, err
	}
	defer p.exitNesting()

	elem := target.Elem()
	var items []cvalue.CValue
	err := d.Arr(func(d *jx.Decoder) error {
		if err := p.countElement(); err != nil {
			return err
		}
		v, err := p.parseValue(d, elem, depth+1)
		if err != nil {
			return err
		}
		items = append(items, v)
		return nil
	})
	if err != nil {
		return cvalue.CValue{}, asStreamingError(err)
	}
	return cvalue.List(elem, items), nil
}

func (p *parseState) parseProduct(d *jx.Decoder, target ctype.CType, depth int) (cvalue.CValue, error) {
	if err := p.enterNesting(); err != nil {
		return cvalue.CValue{}, err
	}
	defer p.exitNesting()

	fields := make(map[string]cvalue.CValue)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		name := string(key)
		fieldType, known := target.FieldType(name)
		if !known {
			return p.skipCounting(d, depth+1)
		}
		v, err := p.parseValue(d, fieldType, depth+1)
		if err != nil {
			return err
		}
		fields[name] = v
		return nil
	})
	if err != nil {
		return cvalue.CValue{}, asStreamingError(err)
	}

	var missing []string
	for _, name := range target.SortedFieldNames() {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return cvalue.CValue{}, cerrors.NewStreamingError("Missing required fields: " + strings.Join(missing, ", "))
	}

	return cvalue.Product(target, fields), nil
}

func (p *parseState) parseUnion(d *jx.Decoder, target ctype.CType, depth int) (cvalue.CValue, error) {
	if err := p.enterNesting(); err != nil {
		return cvalue.CValue{}, err
	}
	defer p.exitNesting()

	var tag string
	var sawTag, sawValue bool
	var inner cvalue.CValue

	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "tag":
			t, err := d.Str()
			if err != nil {
				return err
			}
			tag = t
			sawTag = true
			return nil
		case "value":
			if !sawTag {
				return cerrors.NewStreamingError("\"value\" must come after \"tag\"")
			}
			variantType, ok := target.VariantType(tag)
			if !ok {
				return cerrors.NewStreamingError("Unknown union tag")
			}
			v, err := p.parseValue(d, variantType, depth+1)
			if err != nil {
				return err
			}
			inner = v
			sawValue = true
			return nil
		default:
			return p.skipCounting(d, depth+1)
		}
	})
	if err != nil {
		return cvalue.CValue{}, asStreamingError(err)
	}

	if !sawTag {
		return cvalue.CValue{}, cerrors.NewStreamingError("missing 'tag'")
	}
	if !sawValue {
		return cvalue.CValue{}, cerrors.NewStreamingError("missing 'value'")
	}

	return cvalue.UnionValue(target, tag, inner), nil
}

// skipCounting discards one JSON value without a known target type, still
// charging it against the array element and nesting depth limits (§4.D):
// an attacker cannot bypass the guards by hiding payload behind unknown
// keys.
func (p *parseState) skipCounting(d *jx.Decoder, depth int) error {
	typ, err := d.Next()
	if err != nil {
		return err
	}

	switch typ {
	case jx.Array:
		if err := p.enterNesting(); err != nil {
			return err
		}
		defer p.exitNesting()
		return d.Arr(func(d *jx.Decoder) error {
			if err := p.countElement(); err != nil {
				return err
			}
			return p.skipCounting(d, depth+1)
		})
	case jx.Object:
		if err := p.enterNesting(); err != nil {
			return err
		}
		defer p.exitNesting()
		return d.ObjBytes(func(d *jx.Decoder, _ []byte) error {
			return p.skipCounting(d, depth+1)
		})
	default:
		return d.Skip()
	}
}

// asStreamingError passes through errors already tagged as StreamingError
// (so "Nesting depth limit exceeded" etc. survive jx's callback wrapping
// unchanged) and wraps anything else from the underlying decoder.
func asStreamingError(err error) error {
	var se *cerrors.StreamingError
	if errors.As(err, &se) {
		return se
	}
	return cerrors.NewStreamingError(err.Error())
}
