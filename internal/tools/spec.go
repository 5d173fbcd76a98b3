package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sells-group/finchat/internal/model"
)

// QuestionInput is the input of classify and extract.
type QuestionInput struct {
	Question string `json:"question" jsonschema:"description=The user question in Korean or English"`
}

// BuildPromptInput is the input of build-prompt.
type BuildPromptInput struct {
	Category string            `json:"category" jsonschema:"enum=accounting,enum=finance,enum=business,enum=hybrid,enum=else,description=Question category"`
	Tier     model.Tier        `json:"tier" jsonschema:"description=Audience tier: 1 beginner or 2 intermediate or 3 expert"`
	Question string            `json:"question,omitempty" jsonschema:"description=Question text; fills the question placeholder"`
	Fields   map[string]string `json:"fields,omitempty" jsonschema:"description=Placeholder values such as context or biz or financial_data"`
}

// AskInput is the input of ask.
type AskInput struct {
	Question string            `json:"question" jsonschema:"description=The user question"`
	Tier     model.Tier        `json:"tier" jsonschema:"description=Audience tier: 1 beginner or 2 intermediate or 3 expert"`
	Fields   map[string]string `json:"fields,omitempty" jsonschema:"description=Reference material keyed by placeholder name"`
}

// ClassifySpec returns the tool specification for classify
func ClassifySpec() mcp.Tool {
	return mcp.NewTool("classify",
		mcp.WithDescription(`Classifies a financial question into one of accounting, finance, business, hybrid or else.
Makes one call to the configured language model and returns the category label.`),
		mcp.WithInputSchema[QuestionInput](),
		mcp.WithTitleAnnotation("Classify Question"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// ExtractSpec returns the tool specification for extract
func ExtractSpec() mcp.Tool {
	return mcp.NewTool("extract",
		mcp.WithDescription(`Extracts the company name and target years from a question.
Returns JSON with "company" (empty when none is named) and "years".`),
		mcp.WithInputSchema[QuestionInput](),
		mcp.WithTitleAnnotation("Extract Company and Years"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// BuildPromptSpec returns the tool specification for build-prompt. The
// tool never calls the model.
func BuildPromptSpec() mcp.Tool {
	return mcp.NewTool("build-prompt",
		mcp.WithDescription(`Selects the answer template for a category and tier and fills it.
Fails without output when a declared placeholder is missing. The else template ignores the tier.`),
		mcp.WithInputSchema[BuildPromptInput](),
		mcp.WithTitleAnnotation("Build Prompt"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// AskSpec returns the tool specification for ask
func AskSpec() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription(`Answers a question end to end: classify, extract, fill the tier template and generate.
Reference material for the category (context, biz, financial_data, acct, fin) is passed in fields.`),
		mcp.WithInputSchema[AskInput](),
		mcp.WithTitleAnnotation("Ask"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
