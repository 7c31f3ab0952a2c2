package runtime

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Trace records a generator's observable behavior — the
// (yieldedValues, returnValue, thrown) triple spec §8 compares against
// the source generator's own trace — as structpb.Values, so it can be
// serialized, diffed, or golden-compared without a bespoke encoding.
// Values flowing through this module's tests are the JSON-like
// primitives/maps/slices structpb already knows how to represent,
// mirroring the fact that yielded values in the source language are
// themselves dynamically typed.
type Trace struct {
	Yielded  []*structpb.Value
	Return   *structpb.Value
	Thrown   *structpb.Value
	HasThrow bool
}

// Record runs gen to completion (or until maxSteps resumptions, to
// guard a misbehaving infinite generator in a test), sending the
// elements of sends back on each resumption, and returns the resulting
// Trace.
func Record(gen *Generator, sends []any, maxSteps int) (*Trace, error) {
	tr := &Trace{}
	var send any
	for i := 0; i < maxSteps; i++ {
		var v any
		var done bool
		if i == 0 {
			v, done = gen.Next()
		} else {
			if i-1 < len(sends) {
				send = sends[i-1]
			} else {
				send = nil
			}
			v, done = gen.Send(send)
		}
		if done {
			if thrown, ok := gen.Thrown(); ok {
				pv, perr := toStructValue(thrown)
				if perr != nil {
					return nil, perr
				}
				tr.Thrown, tr.HasThrow = pv, true
				return tr, nil
			}
			pv, err := toStructValue(v)
			if err != nil {
				return nil, err
			}
			tr.Return = pv
			return tr, nil
		}
		pv, err := toStructValue(v)
		if err != nil {
			return nil, err
		}
		tr.Yielded = append(tr.Yielded, pv)
	}
	return nil, fmt.Errorf("runtime: generator did not complete within %d steps", maxSteps)
}

func toStructValue(v any) (*structpb.Value, error) {
	if v == nil {
		return structpb.NewNullValue(), nil
	}
	return structpb.NewValue(v)
}
