/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package rpc is the JSON-RPC codec for both wire shapes spec.md §4.2
// describes: the editor's compact array framing, and standard
// JSON-RPC 2.0 for LSP. Fixed-shape frames are hand-built with
// tidwall/sjson rather than round-tripped through a generic struct
// marshaler; free-form params/result payloads pass through as
// json.RawMessage, read with tidwall/gjson.
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrMalformedEditorLine is a protocol error per spec.md §7.
var ErrMalformedEditorLine = errors.New("rpc: malformed editor line")

// EditorRequest is `[positive_id, {method, params}]`.
type EditorRequest struct {
	ID     int64
	Method string
	Params json.RawMessage
}

// EditorResponse is `[id, result]` answering a prior daemon→editor expr
// call (spec.md §4.2).
type EditorResponse struct {
	ID     int64
	Result json.RawMessage
}

// EditorNotification is `[{method, params}]`.
type EditorNotification struct {
	Method string
	Params json.RawMessage
}

// ParseEditorLine classifies one already-framed editor line. isOutstandingExprID
// reports whether id is a daemon→editor expr call still awaiting an answer;
// it is consulted for a *positive* leading id before falling back to the
// strict bullet-list framing (negative id ⇒ response, positive ⇒ request),
// per spec.md §4.2's explicit ordering.
func ParseEditorLine(line []byte, isOutstandingExprID func(id int64) bool) (any, error) {
	parsed := gjson.ParseBytes(line)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: not a JSON array", ErrMalformedEditorLine)
	}
	elems := parsed.Array()

	switch len(elems) {
	case 1:
		if !elems[0].IsObject() {
			return nil, fmt.Errorf("%w: notification element is not an object", ErrMalformedEditorLine)
		}
		method := elems[0].Get("method")
		if !method.Exists() {
			return nil, fmt.Errorf("%w: notification missing method", ErrMalformedEditorLine)
		}
		return EditorNotification{
			Method: method.String(),
			Params: rawOf(elems[0].Get("params")),
		}, nil

	case 2:
		if elems[0].Type != gjson.Number {
			return nil, fmt.Errorf("%w: leading element is not numeric", ErrMalformedEditorLine)
		}
		id := elems[0].Int()

		if id > 0 && isOutstandingExprID != nil && isOutstandingExprID(id) {
			return EditorResponse{ID: id, Result: rawOf(elems[1])}, nil
		}
		if id < 0 {
			return EditorResponse{ID: id, Result: rawOf(elems[1])}, nil
		}

		if !elems[1].IsObject() {
			return nil, fmt.Errorf("%w: request element is not an object", ErrMalformedEditorLine)
		}
		method := elems[1].Get("method")
		if !method.Exists() {
			return nil, fmt.Errorf("%w: request missing method", ErrMalformedEditorLine)
		}
		return EditorRequest{
			ID:     id,
			Method: method.String(),
			Params: rawOf(elems[1].Get("params")),
		}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected array length %d", ErrMalformedEditorLine, len(elems))
	}
}

func rawOf(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

// BuildEditorResponse builds `[-requestID, result]`, the convention
// spec.md §8 scenario S1 demonstrates: a daemon response to editor request
// N is written back as `[-N, result]`.
func BuildEditorResponse(requestID int64, result any) ([]byte, error) {
	return buildEditorPair(-requestID, result)
}

// BuildEditorExprReply is used by the editor side of the protocol (tests
// and fakes simulate it): replying to a daemon→editor `["expr", expr, id]`
// call reuses id as-is (no negation), per the codec's ParseEditorLine
// contract above.
func BuildEditorExprReply(exprID int64, result any) ([]byte, error) {
	return buildEditorPair(exprID, result)
}

func buildEditorPair(id int64, result any) ([]byte, error) {
	encoded, err := marshalFreeForm(result)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetRawBytes([]byte("[]"), "0", []byte(fmt.Sprintf("%d", id)))
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetRawBytes(out, "1", encoded)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BuildEditorNotification builds `[{method, params}]`.
func BuildEditorNotification(method string, params any) ([]byte, error) {
	encoded, err := marshalFreeForm(params)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetBytes([]byte("[{}]"), "0.method", method)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetRawBytes(out, "0.params", encoded)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BuildEditorCall builds a daemon→editor channel command, e.g.
// `["call", fn, args]` / `["call", fn, args, id]` / `["expr", expr]` /
// `["expr", expr, id]` / `["ex", cmd]` / `["normal", keys]` /
// `["redraw", mode]` (spec.md §6).
func BuildEditorCall(kind string, rest ...any) ([]byte, error) {
	out := []byte("[]")
	var err error
	out, err = sjson.SetBytes(out, "0", kind)
	if err != nil {
		return nil, err
	}
	for i, v := range rest {
		encoded, err := marshalFreeForm(v)
		if err != nil {
			return nil, err
		}
		out, err = sjson.SetRawBytes(out, fmt.Sprintf("%d", i+1), encoded)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func marshalFreeForm(v any) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok {
		if raw == nil {
			return []byte("null"), nil
		}
		return raw, nil
	}
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
