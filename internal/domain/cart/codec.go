package cart

import (
	"encoding/base64"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// wireVersion is bumped when the wire layout changes incompatibly. Carts
// carrying a different version decode to empty rather than guessing.
const wireVersion = 1

// Encode serializes the cart for cookie and session transport. The payload
// is a small versioned JSON object, base64url-encoded so it survives as a
// cookie value: {"v":1,"lines":{"<productID>":<quantity>,...}}.
//
// Encode is the left inverse of Decode: Decode(Encode(c)) equals c for every
// cart reachable through Add/Remove.
func Encode(c *Cart) string {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("v")
	e.Int(wireVersion)
	e.FieldStart("lines")
	e.ObjStart()
	for _, l := range c.lines {
		e.FieldStart(strconv.FormatInt(l.ProductID, 10))
		e.Int(l.Quantity)
	}
	e.ObjEnd()
	e.ObjEnd()
	return base64.RawURLEncoding.EncodeToString(e.Bytes())
}

// Decode parses an encoded cart. Absent, corrupt, wrong-version or
// invariant-violating input yields an empty cart, never an error: a missing
// or unreadable cart is the normal first-visit state. Unknown fields are
// skipped for forward compatibility.
func Decode(s string) *Cart {
	if s == "" {
		return New()
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return New()
	}

	var (
		version int
		c       = New()
	)
	d := jx.DecodeBytes(raw)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "v":
			v, err := d.Int()
			if err != nil {
				return err
			}
			version = v
			return nil
		case "lines":
			return d.Obj(func(d *jx.Decoder, key string) error {
				id, err := strconv.ParseInt(key, 10, 64)
				if err != nil {
					return err
				}
				qty, err := d.Int()
				if err != nil {
					return err
				}
				// Reject duplicate IDs and non-positive quantities: both
				// violate cart invariants and indicate tampering or
				// corruption, which maps to the empty-cart fallback.
				if c.Quantity(id) != 0 {
					return errDuplicateLine
				}
				return c.Add(id, qty)
			})
		default:
			return d.Skip()
		}
	})
	if err != nil || version != wireVersion {
		return New()
	}
	return c
}

var errDuplicateLine = errors.New("duplicate cart line")
