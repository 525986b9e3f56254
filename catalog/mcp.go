package catalog

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the dictionary tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerListTool(srv)
	s.registerDefineTool(srv)
	s.registerSearchTool(srv)
}

type listOut struct {
	Dictionaries []dictInfo `json:"dictionaries"`
}

func (s *Service) registerListTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "dict_list",
		Description: "List the configured dictionary sources.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, listOut, error) {
		var out listOut
		for _, src := range s.sources {
			out.Dictionaries = append(out.Dictionaries, dictInfo{ID: src.ID(), Name: src.Name()})
		}
		return nil, out, nil
	})
}

type defineIn struct {
	Dict   string `json:"dict" jsonschema:"dictionary id from dict_list"`
	Word   string `json:"word" jsonschema:"word to look up"`
	Format string `json:"format,omitempty" jsonschema:"output format: text (default), markdown or html"`
}

type defineOut struct {
	Content string `json:"content"`
}

func (s *Service) registerDefineTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "dict_define",
		Description: "Fetch the definition of a word from a dictionary source.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in defineIn) (*mcp.CallToolResult, defineOut, error) {
		body, err := s.Lookup(ctx, in.Dict, in.Word)
		if err != nil {
			return nil, defineOut{}, err
		}
		switch in.Format {
		case "html":
			return nil, defineOut{Content: string(body)}, nil
		case "markdown":
			md, err := ToMarkdown(body)
			if err != nil {
				return nil, defineOut{}, fmt.Errorf("render markdown: %w", err)
			}
			return nil, defineOut{Content: md}, nil
		default:
			return nil, defineOut{Content: ToText(body)}, nil
		}
	})
}

type searchIn struct {
	Dict  string `json:"dict" jsonschema:"dictionary id from dict_list"`
	Query string `json:"query" jsonschema:"word prefix to search"`
}

type searchOut struct {
	Matches []string `json:"matches"`
}

func (s *Service) registerSearchTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "dict_search",
		Description: "Search a dictionary source for words starting with a prefix.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in searchIn) (*mcp.CallToolResult, searchOut, error) {
		matches, err := s.Search(ctx, in.Dict, in.Query)
		if err != nil {
			return nil, searchOut{}, err
		}
		return nil, searchOut{Matches: matches}, nil
	})
}
