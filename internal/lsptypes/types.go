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

// Package lsptypes holds the small subset of LSP 3.16 wire structs the
// daemon needs to read and build: positions/ranges/locations, diagnostics,
// document symbols, and the fixed client-capabilities payload sent on
// initialize. These mirror the literal JSON shapes spec.md describes.
package lsptypes

import "encoding/json"

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// LocationLink is the richer alternative goto-definition results may use
// (spec.md §4.6: "extract uri or targetUri and range.start or
// targetSelectionRange.start").
type LocationLink struct {
	TargetURI             string `json:"targetUri"`
	TargetRange           Range  `json:"targetRange"`
	TargetSelectionRange  Range  `json:"targetSelectionRange"`
}

// Diagnostic is the shape broadcast verbatim in publishDiagnostics
// notifications (spec.md §4.7).
type Diagnostic struct {
	Range    Range           `json:"range"`
	Severity int             `json:"severity,omitempty"`
	Code     json.RawMessage `json:"code,omitempty"`
	Source   string          `json:"source,omitempty"`
	Message  string          `json:"message"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// DocumentSymbol is the hierarchical documentSymbol shape; Children is
// recursive to match the LSP wire format.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           int              `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolInformation is the flat, pre-3.16 documentSymbol alternative some
// servers still return instead of DocumentSymbol.
type SymbolInformation struct {
	Name     string   `json:"name"`
	Kind     int      `json:"kind"`
	Location Location `json:"location"`
}

// ProgressValue models the generic $/progress "value" payload across its
// three phases (spec.md §3 "Progress titles", §4.7).
type ProgressValue struct {
	Kind        string `json:"kind"` // "begin" | "report" | "end"
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	Percentage  *int   `json:"percentage,omitempty"`
	Cancellable *bool  `json:"cancellable,omitempty"`
}

type ProgressParams struct {
	Token json.RawMessage `json:"token"`
	Value ProgressValue   `json:"value"`
}

// symbolKindNames implements spec.md §4.6's picker symbol-kind table:
// "1..26 → File..TypeParameter, default Symbol".
var symbolKindNames = [...]string{
	1: "File", 2: "Module", 3: "Namespace", 4: "Package", 5: "Class",
	6: "Method", 7: "Property", 8: "Field", 9: "Constructor", 10: "Enum",
	11: "Interface", 12: "Function", 13: "Variable", 14: "Constant",
	15: "String", 16: "Number", 17: "Boolean", 18: "Array", 19: "Object",
	20: "Key", 21: "Null", 22: "EnumMember", 23: "Struct", 24: "Event",
	25: "Operator", 26: "TypeParameter",
}

// SymbolKindName maps an LSP SymbolKind integer to its name.
func SymbolKindName(kind int) string {
	if kind >= 1 && kind < len(symbolKindNames) && symbolKindNames[kind] != "" {
		return symbolKindNames[kind]
	}
	return "Symbol"
}

// ClientCapabilities is the conservative, fixed set spec.md §4.3 mandates:
// "documentSymbol hierarchical, rename/codeAction/inlayHint enabled,
// workDoneProgress enabled, unicode UTF-16 positions".
type ClientCapabilities struct {
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
	Window       WindowClientCapabilities       `json:"window"`
	General      GeneralClientCapabilities      `json:"general"`
}

type TextDocumentClientCapabilities struct {
	DocumentSymbol DocumentSymbolCapabilities `json:"documentSymbol"`
	Rename         RenameCapabilities         `json:"rename"`
	CodeAction     CodeActionCapabilities     `json:"codeAction"`
	InlayHint      InlayHintCapabilities      `json:"inlayHint"`
}

type DocumentSymbolCapabilities struct {
	HierarchicalDocumentSymbolSupport bool `json:"hierarchicalDocumentSymbolSupport"`
}

type RenameCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type CodeActionCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type InlayHintCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type WindowClientCapabilities struct {
	WorkDoneProgress bool `json:"workDoneProgress"`
}

type GeneralClientCapabilities struct {
	PositionEncodings []string `json:"positionEncodings"`
}

// DefaultClientCapabilities returns the fixed capabilities object sent with
// every `initialize` request.
func DefaultClientCapabilities() ClientCapabilities {
	return ClientCapabilities{
		TextDocument: TextDocumentClientCapabilities{
			DocumentSymbol: DocumentSymbolCapabilities{HierarchicalDocumentSymbolSupport: true},
			Rename:         RenameCapabilities{DynamicRegistration: true},
			CodeAction:     CodeActionCapabilities{DynamicRegistration: true},
			InlayHint:      InlayHintCapabilities{DynamicRegistration: true},
		},
		Window:  WindowClientCapabilities{WorkDoneProgress: true},
		General: GeneralClientCapabilities{PositionEncodings: []string{"utf-16"}},
	}
}

type InitializeParams struct {
	ProcessID    *int               `json:"processId"`
	RootURI      *string            `json:"rootUri"`
	Capabilities ClientCapabilities `json:"capabilities"`
}
