package assistant

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/metrics"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

// MaterialRequest describes what reference material an answer needs.
type MaterialRequest struct {
	Question string
	Category model.Category
	Tier     model.Tier
	Entity   *model.ExtractedEntity // nil for categories without a company
	Fields   []string               // placeholders the selected template declares
}

// MaterialSource supplies the reference text (context, acct, biz, fin,
// financial_data) that fills an answer template. Retrieval itself lives
// outside this package.
type MaterialSource interface {
	Materials(ctx context.Context, req MaterialRequest) (prompt.Fields, error)
}

// StaticMaterials serves the same fields for every request.
type StaticMaterials prompt.Fields

// Materials returns a copy of s.
func (s StaticMaterials) Materials(_ context.Context, _ MaterialRequest) (prompt.Fields, error) {
	return prompt.Fields(s).Merge(nil), nil
}

// AnswerRequest is one question to answer at a given tier. Fields, when
// set, override what the MaterialSource returns.
type AnswerRequest struct {
	Question string
	Tier     model.Tier
	Fields   prompt.Fields
}

// Answer is the result of the full pipeline.
type Answer struct {
	Question        string                 `json:"question"`
	Category        model.Category         `json:"category"`
	Tier            model.Tier             `json:"tier"`
	Entity          *model.ExtractedEntity `json:"entity,omitempty"`
	TemplateID      string                 `json:"template_id"`
	TemplateVersion string                 `json:"template_version"`
	Prompt          string                 `json:"prompt,omitempty"`
	Text            string                 `json:"text"`
	Usage           model.TokenUsage       `json:"usage"`
	ElapsedMs       int64                  `json:"elapsed_ms"`
}

// BuildPrompt selects the template for (category, tier) and fills it. On a
// missing field nothing is returned and nothing should be sent.
func (a *Assistant) BuildPrompt(category model.Category, tier model.Tier, fields prompt.Fields) (string, error) {
	filled, _, err := a.build(category, tier, fields)
	return filled, err
}

func (a *Assistant) build(category model.Category, tier model.Tier, fields prompt.Fields) (string, *prompt.Template, error) {
	t, err := a.catalog.Select(category, tier)
	if err != nil {
		return "", nil, err
	}
	filled, err := t.Fill(fields)
	if err != nil {
		return "", nil, err
	}
	metrics.PromptBuilds.WithLabelValues(string(category), strconv.Itoa(int(tier))).Inc()
	zap.L().Debug("prompt built",
		zap.String("template_id", t.ID),
		zap.String("category", string(category)),
		zap.Stringer("tier", tier),
		zap.Int("prompt_chars", len([]rune(filled))),
	)
	return filled, t, nil
}

// Answer classifies the question, extracts its entity when the category
// needs one, gathers materials, fills the template and generates the reply.
func (a *Assistant) Answer(ctx context.Context, req AnswerRequest) (*Answer, error) {
	start := time.Now()

	q, err := normalize(req.Question)
	if err != nil {
		return nil, err
	}
	if err := req.Tier.Validate(); err != nil {
		return nil, err
	}

	out := &Answer{Question: q, Tier: req.Tier}

	cat, usage, err := a.classify(ctx, q)
	out.Usage.Add(usage)
	if err != nil {
		return nil, err
	}
	out.Category = cat

	if cat.NeedsEntity() {
		entity, usage, err := a.extract(ctx, q)
		out.Usage.Add(usage)
		if err != nil {
			return nil, err
		}
		out.Entity = entity
	}

	fields := prompt.Fields{}
	if !cat.TierIndependent() {
		t, err := a.catalog.Select(cat, req.Tier)
		if err != nil {
			return nil, err
		}
		fields, err = a.materials.Materials(ctx, MaterialRequest{
			Question: q,
			Category: cat,
			Tier:     req.Tier,
			Entity:   out.Entity,
			Fields:   t.Fields,
		})
		if err != nil {
			return nil, eris.Wrap(err, "assistant: materials")
		}
	}
	fields = fields.Merge(req.Fields).Merge(prompt.Fields{"question": q})
	if _, ok := fields["resolved_corp_name"]; !ok && out.Entity != nil {
		fields["resolved_corp_name"] = out.Entity.Company
	}

	filled, t, err := a.build(cat, req.Tier, fields)
	if err != nil {
		return nil, err
	}
	out.TemplateID = t.ID
	out.TemplateVersion = t.Version
	out.Prompt = filled

	resp, err := a.gen.Generate(ctx, llm.Request{Phase: llm.PhaseAnswer, Prompt: filled})
	if err != nil {
		return nil, eris.Wrap(err, "assistant: answer")
	}
	out.Text = resp.Text
	out.Usage.Add(resp.Usage)
	out.ElapsedMs = time.Since(start).Milliseconds()

	zap.L().Info("question answered",
		zap.String("category", string(cat)),
		zap.Stringer("tier", req.Tier),
		zap.String("template_id", t.ID),
		zap.Int64("input_tokens", out.Usage.InputTokens),
		zap.Int64("output_tokens", out.Usage.OutputTokens),
		zap.Float64("estimated_cost_usd", out.Usage.Cost),
		zap.Int64("elapsed_ms", out.ElapsedMs),
	)
	return out, nil
}
