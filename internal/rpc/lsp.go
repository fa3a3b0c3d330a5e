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
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// LSPError is a JSON-RPC 2.0 error object.
type LSPError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// LSPResponse, LSPNotification, LSPServerRequest are the three shapes
// read_messages() classifies incoming LSP frames into (spec.md §4.3):
// "classifies by presence of id and method/result."
type LSPResponse struct {
	ID     int64
	Result json.RawMessage
	Error  *LSPError
}

type LSPNotification struct {
	Method string
	Params json.RawMessage
}

// LSPServerRequest is a server-initiated request (has both id and method),
// e.g. workspace/applyEdit (spec.md §4.7).
type LSPServerRequest struct {
	ID     int64
	Method string
	Params json.RawMessage
}

// ParseLSPMessage classifies one already-framed LSP message body.
func ParseLSPMessage(body []byte) (any, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("rpc: LSP message is not a JSON object")
	}

	idField := parsed.Get("id")
	methodField := parsed.Get("method")

	switch {
	case idField.Exists() && methodField.Exists():
		return LSPServerRequest{
			ID:     idField.Int(),
			Method: methodField.String(),
			Params: rawOf(parsed.Get("params")),
		}, nil

	case idField.Exists():
		resp := LSPResponse{ID: idField.Int(), Result: rawOf(parsed.Get("result"))}
		if errField := parsed.Get("error"); errField.Exists() {
			resp.Error = &LSPError{
				Code:    int(errField.Get("code").Int()),
				Message: errField.Get("message").String(),
				Data:    rawOf(errField.Get("data")),
			}
		}
		return resp, nil

	case methodField.Exists():
		return LSPNotification{
			Method: methodField.String(),
			Params: rawOf(parsed.Get("params")),
		}, nil

	default:
		return nil, fmt.Errorf("rpc: LSP message has neither id nor method")
	}
}

// BuildLSPRequest builds a standard JSON-RPC 2.0 request frame.
func BuildLSPRequest(id int64, method string, params any) ([]byte, error) {
	out := []byte(`{"jsonrpc":"2.0"}`)
	out, err := sjson.SetBytes(out, "id", id)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetBytes(out, "method", method)
	if err != nil {
		return nil, err
	}
	encoded, err := marshalFreeForm(params)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, "params", encoded)
}

// BuildLSPNotification builds a standard JSON-RPC 2.0 notification frame
// (no id).
func BuildLSPNotification(method string, params any) ([]byte, error) {
	out := []byte(`{"jsonrpc":"2.0"}`)
	out, err := sjson.SetBytes(out, "method", method)
	if err != nil {
		return nil, err
	}
	encoded, err := marshalFreeForm(params)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, "params", encoded)
}

// BuildLSPResponse builds a success response to a server-initiated request.
func BuildLSPResponse(id int64, result any) ([]byte, error) {
	out := []byte(`{"jsonrpc":"2.0"}`)
	out, err := sjson.SetBytes(out, "id", id)
	if err != nil {
		return nil, err
	}
	encoded, err := marshalFreeForm(result)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, "result", encoded)
}
