// Package tools exposes the assistant as MCP tools.
package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/sells-group/finchat/internal/assistant"
)

// Dependencies holds what the tool handlers need.
type Dependencies struct {
	Assistant *assistant.Assistant
}

// All returns every tool with its handler bound to deps.
func All(deps *Dependencies) []server.ServerTool {
	return []server.ServerTool{
		{Tool: ClassifySpec(), Handler: ClassifyHandler(deps)},
		{Tool: ExtractSpec(), Handler: ExtractHandler(deps)},
		{Tool: BuildPromptSpec(), Handler: BuildPromptHandler(deps)},
		{Tool: AskSpec(), Handler: AskHandler(deps)},
	}
}

// NewServer builds an MCP server with all tools registered.
func NewServer(version string, deps *Dependencies) *server.MCPServer {
	s := server.NewMCPServer("finchat", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTools(All(deps)...)
	return s
}
