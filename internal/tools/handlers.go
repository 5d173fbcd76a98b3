package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/assistant"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

// ClassifyHandler returns a handler function for the classify tool
func ClassifyHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := checkDeps(deps, "classify"); res != nil {
			return res, nil
		}
		var args QuestionInput
		if err := request.BindArguments(&args); err != nil {
			return toolError("classify", err), nil
		}
		cat, err := deps.Assistant.Classify(ctx, args.Question)
		if err != nil {
			return toolError("classify", err), nil
		}
		return mcp.NewToolResultText(string(cat)), nil
	}
}

// ExtractHandler returns a handler function for the extract tool
func ExtractHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := checkDeps(deps, "extract"); res != nil {
			return res, nil
		}
		var args QuestionInput
		if err := request.BindArguments(&args); err != nil {
			return toolError("extract", err), nil
		}
		entity, err := deps.Assistant.Extract(ctx, args.Question)
		if err != nil {
			return toolError("extract", err), nil
		}
		return jsonResult("extract", entity), nil
	}
}

// BuildPromptHandler returns a handler function for the build-prompt tool
func BuildPromptHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := checkDeps(deps, "build-prompt"); res != nil {
			return res, nil
		}
		var args BuildPromptInput
		if err := request.BindArguments(&args); err != nil {
			return toolError("build-prompt", err), nil
		}
		cat, err := model.ParseCategory(args.Category)
		if err != nil {
			return toolError("build-prompt", err), nil
		}
		fields := prompt.Fields(args.Fields).Merge(nil)
		if args.Question != "" {
			fields["question"] = model.NormalizeQuestion(args.Question)
		}
		filled, err := deps.Assistant.BuildPrompt(cat, args.Tier, fields)
		if err != nil {
			return toolError("build-prompt", err), nil
		}
		return mcp.NewToolResultText(filled), nil
	}
}

// AskHandler returns a handler function for the ask tool
func AskHandler(deps *Dependencies) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := checkDeps(deps, "ask"); res != nil {
			return res, nil
		}
		var args AskInput
		if err := request.BindArguments(&args); err != nil {
			return toolError("ask", err), nil
		}
		ans, err := deps.Assistant.Answer(ctx, assistant.AnswerRequest{
			Question: args.Question,
			Tier:     args.Tier,
			Fields:   prompt.Fields(args.Fields),
		})
		if err != nil {
			return toolError("ask", err), nil
		}
		ans.Prompt = ""
		return jsonResult("ask", ans), nil
	}
}

func checkDeps(deps *Dependencies, tool string) *mcp.CallToolResult {
	if deps == nil || deps.Assistant == nil {
		zap.L().Error("assistant is not initialized", zap.String("tool", tool))
		return mcp.NewToolResultError("assistant is not initialized")
	}
	return nil
}

func toolError(tool string, err error) *mcp.CallToolResult {
	zap.L().Warn("tool call failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(tool string, v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(tool, err)
	}
	return mcp.NewToolResultText(string(b))
}
