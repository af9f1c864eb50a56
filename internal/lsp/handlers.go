package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/tooling"
)

// handleTextDocumentCompletion handles completion requests
func (s *Server) handleTextDocumentCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse completion params")
	}

	uri := string(params.TextDocument.URI)
	pos := tooling.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	}

	completions, err := s.api.GetCompletions(uri, pos)
	if err != nil {
		s.logger.Warn("completions", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get completions")
	}

	// Convert to LSP completion items
	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, c := range completions {
		item := protocol.CompletionItem{
			Label:  c.Label,
			Kind:   convertCompletionKind(c.Kind),
			Detail: c.Detail,
			Documentation: protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: c.Documentation,
			},
			InsertText: c.InsertText,
		}

		// Set snippet format if InsertText contains snippet placeholders
		if strings.Contains(c.InsertText, "$0") || strings.Contains(c.InsertText, "${") {
			item.InsertTextFormat = protocol.InsertTextFormatSnippet
		} else {
			item.InsertTextFormat = protocol.InsertTextFormatPlainText
		}

		if c.SortText != "" {
			item.SortText = c.SortText
		}
		items = append(items, item)
	}

	result := protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}

	return reply(ctx, result, nil)
}

// handleTextDocumentHover handles hover requests
func (s *Server) handleTextDocumentHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse hover params")
	}

	uri := string(params.TextDocument.URI)
	pos := tooling.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	}

	hover, err := s.api.GetHover(uri, pos)
	if err != nil {
		s.logger.Warn("hover", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get hover information")
	}

	if hover == nil {
		return reply(ctx, nil, nil)
	}

	hoverRange := convertRange(hover.Range)
	result := protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: hover.Contents,
		},
		Range: &hoverRange,
	}

	return reply(ctx, result, nil)
}

// handleTextDocumentDefinition handles go-to-definition requests
func (s *Server) handleTextDocumentDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse definition params")
	}

	uri := string(params.TextDocument.URI)
	pos := tooling.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	}

	location, err := s.api.GetDefinition(uri, pos)
	if err != nil {
		s.logger.Warn("definition", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get definition")
	}

	if location == nil {
		return reply(ctx, nil, nil)
	}

	result := protocol.Location{
		URI:   protocol.DocumentURI(location.URI),
		Range: convertRange(location.Range),
	}

	return reply(ctx, result, nil)
}

// handleTextDocumentReferences handles find references requests
func (s *Server) handleTextDocumentReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse references params")
	}

	uri := string(params.TextDocument.URI)
	pos := tooling.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	}

	references, err := s.api.GetReferences(uri, pos)
	if err != nil {
		s.logger.Warn("references", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get references")
	}

	// Convert to LSP locations
	locations := make([]protocol.Location, 0, len(references))
	for _, ref := range references {
		locations = append(locations, protocol.Location{
			URI:   protocol.DocumentURI(ref.URI),
			Range: convertRange(ref.Range),
		})
	}

	return reply(ctx, locations, nil)
}

// handleTextDocumentDocumentSymbol handles document symbol requests
func (s *Server) handleTextDocumentDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse document symbol params")
	}

	uri := string(params.TextDocument.URI)

	symbols, err := s.api.GetDocumentSymbols(uri)
	if err != nil {
		s.logger.Warn("document symbols", zap.String("uri", uri), zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get document symbols")
	}

	return reply(ctx, nestSymbols(symbols), nil)
}

// handleWorkspaceSymbol handles workspace symbol search requests
func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse workspace symbol params")
	}

	query := params.Query
	indexedSymbols := s.api.GetWorkspaceSymbols(query)

	// Convert to LSP symbol information directly from indexed symbols
	symbols := make([]protocol.SymbolInformation, 0, len(indexedSymbols))
	for _, indexed := range indexedSymbols {
		symbols = append(symbols, protocol.SymbolInformation{
			Name: indexed.Symbol.Name,
			Kind: convertSymbolKind(indexed.Symbol.Kind),
			Location: protocol.Location{
				URI:   protocol.DocumentURI(indexed.URI),
				Range: convertRange(indexed.Range),
			},
			ContainerName: indexed.Symbol.ContainerName,
		})
	}

	return reply(ctx, symbols, nil)
}

// nestSymbols converts document symbols into an outline: attributes,
// methods, requirements and modifiers become children of the class or role
// that declares them. A class range grows to cover its members.
func nestSymbols(symbols []*tooling.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	owners := make(map[string]int)

	for _, sym := range symbols {
		detail := sym.Detail
		if detail == "" {
			detail = sym.Signature
		}
		lspSym := protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           convertSymbolKind(sym.Kind),
			Detail:         detail,
			Range:          convertRange(sym.Range),
			SelectionRange: convertRange(sym.Range),
		}

		if sym.Kind == tooling.SymbolKindClass || sym.Kind == tooling.SymbolKindRole {
			owners[sym.Name] = len(out)
			out = append(out, lspSym)
			continue
		}
		i, ok := owners[sym.ContainerName]
		if !ok {
			out = append(out, lspSym)
			continue
		}
		out[i].Children = append(out[i].Children, lspSym)
		out[i].Range = spanRange(out[i].Range, lspSym.Range)
	}
	return out
}

func spanRange(a, b protocol.Range) protocol.Range {
	if before(b.Start, a.Start) {
		a.Start = b.Start
	}
	if before(a.End, b.End) {
		a.End = b.End
	}
	return a
}

func before(p, q protocol.Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Character < q.Character)
}

func convertRange(r tooling.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func convertCompletionKind(kind tooling.CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case tooling.CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	case tooling.CompletionKindType:
		return protocol.CompletionItemKindTypeParameter
	case tooling.CompletionKindAttribute:
		return protocol.CompletionItemKindField
	case tooling.CompletionKindMethod:
		return protocol.CompletionItemKindMethod
	case tooling.CompletionKindFunction:
		return protocol.CompletionItemKindFunction
	case tooling.CompletionKindClass:
		return protocol.CompletionItemKindClass
	case tooling.CompletionKindSnippet:
		return protocol.CompletionItemKindSnippet
	default:
		return protocol.CompletionItemKindText
	}
}

func convertSymbolKind(kind tooling.SymbolKind) protocol.SymbolKind {
	switch kind {
	case tooling.SymbolKindClass:
		return protocol.SymbolKindClass
	case tooling.SymbolKindRole:
		return protocol.SymbolKindInterface
	case tooling.SymbolKindAttribute:
		return protocol.SymbolKindField
	case tooling.SymbolKindMethod, tooling.SymbolKindRequirement:
		return protocol.SymbolKindMethod
	case tooling.SymbolKindModifier:
		return protocol.SymbolKindEvent
	default:
		return protocol.SymbolKindObject
	}
}
