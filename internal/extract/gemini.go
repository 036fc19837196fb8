package extract

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"tutorhub/marketplace-service/internal/logger"
	"tutorhub/marketplace-service/internal/search"
)

const (
	defaultModel     = "gemini-2.5-flash"
	temperature      = 0.1
	maxOutputTokens  = 500
	maxLogPreviewLen = 200
)

const tutorPrompt = `You extract search fields for a home tutoring marketplace in Bangladesh.
A guardian describes the tutor they want. Reply with ONLY a JSON object:
{
  "Subject": "subject such as Math, English, Physics, Chemistry, Biology, Bangla, ICT or Accounting",
  "ClassLevel": "one of Nursery, KG, Class 1 to Class 10, HSC, A-Level, O-Level",
  "Location": "area or city such as Mirpur, Uttara, Dhanmondi, Gulshan, Dhaka or Online",
  "GenderPreference": "Male or Female if requested",
  "Keywords": ["qualities such as patient, experienced, friendly, strict"]
}
Use null for any field that is not mentioned. No explanation.

Guardian's request: `

const jobPrompt = `You extract search fields for a home tutoring marketplace in Bangladesh.
A tutor describes the tuition job they want. Reply with ONLY a JSON object:
{
  "Subject": "subject such as Math, English, Physics, Chemistry, Biology, Bangla, ICT or Accounting",
  "ClassLevel": "one of Nursery, KG, Class 1 to Class 10, HSC, A-Level, O-Level",
  "City": "city such as Dhaka, Chittagong, Sylhet, Khulna or Rajshahi",
  "Location": "area such as Mirpur, Uttara, Dhanmondi, Gulshan or Banani",
  "Medium": "Bangla or English",
  "MinSalary": minimum monthly salary as a plain number,
  "MaxSalary": maximum monthly salary as a plain number,
  "Keywords": ["preferences such as flexible, nearby, part-time, weekend"]
}
Use null for any field that is not mentioned. Salaries carry no currency symbol. No explanation.

Tutor's request: `

// contentGenerator is the slice of *genai.Models the extractor calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini extracts criteria with the Gemini API.
type Gemini struct {
	models contentGenerator
	model  string
	log    *zap.Logger
}

// NewGemini creates a Gemini extractor for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string, log *zap.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return newGemini(client.Models, model, log), nil
}

func newGemini(models contentGenerator, model string, log *zap.Logger) *Gemini {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Gemini{models: models, model: model, log: log.Named("gemini")}
}

// ExtractTutorCriteria asks Gemini for the fields of a tutor search.
func (g *Gemini) ExtractTutorCriteria(ctx context.Context, text string) (search.TutorCriteria, error) {
	raw, err := g.generate(ctx, tutorPrompt+text)
	if err != nil {
		return search.TutorCriteria{}, err
	}
	var p payload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return search.TutorCriteria{}, errors.Wrap(err, "parse gemini tutor criteria")
	}
	c := search.TutorCriteria{
		Subject:          p.Subject.String(),
		ClassLevel:       p.ClassLevel.String(),
		Location:         p.Location.String(),
		GenderPreference: p.GenderPreference.String(),
		Keywords:         p.keywords(),
		OriginalQuery:    text,
	}.Normalize()
	if err := c.Validate(); err != nil {
		return search.TutorCriteria{}, errors.Wrap(err, "gemini tutor criteria")
	}
	return c, nil
}

// ExtractJobCriteria asks Gemini for the fields of a job search.
func (g *Gemini) ExtractJobCriteria(ctx context.Context, text string) (search.JobCriteria, error) {
	raw, err := g.generate(ctx, jobPrompt+text)
	if err != nil {
		return search.JobCriteria{}, err
	}
	var p payload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return search.JobCriteria{}, errors.Wrap(err, "parse gemini job criteria")
	}
	c := search.JobCriteria{
		Subject:       p.Subject.String(),
		ClassLevel:    p.ClassLevel.String(),
		City:          p.City.String(),
		Location:      p.Location.String(),
		Medium:        p.Medium.String(),
		MinSalary:     int(p.MinSalary),
		MaxSalary:     int(p.MaxSalary),
		Keywords:      p.keywords(),
		OriginalQuery: text,
	}.Normalize()
	if err := c.Validate(); err != nil {
		return search.JobCriteria{}, errors.Wrap(err, "gemini job criteria")
	}
	return c, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](temperature),
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	g.log.Debug("generate content request",
		zap.String("model", g.model),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", errors.Wrap(err, "generate content")
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("gemini api returned empty response")
	}
	g.log.Debug("generate content response", zap.String("response_preview", logger.Truncate(out, maxLogPreviewLen)))
	return out, nil
}

// stripFences removes a surrounding ```json fence if the model added one.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

// payload is the JSON object the prompts ask for.
type payload struct {
	Subject          optString `json:"Subject"`
	ClassLevel       optString `json:"ClassLevel"`
	Location         optString `json:"Location"`
	GenderPreference optString `json:"GenderPreference"`
	City             optString `json:"City"`
	Medium           optString `json:"Medium"`
	MinSalary        optInt    `json:"MinSalary"`
	MaxSalary        optInt    `json:"MaxSalary"`
	Keywords         []any     `json:"Keywords"`
}

func (p payload) keywords() []string {
	var out []string
	for _, k := range p.Keywords {
		if s, ok := k.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// optString accepts a JSON string or null; any other type decodes as unset.
type optString string

func (s *optString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = optString(v)
	return nil
}

func (s optString) String() string { return string(s) }

// optInt accepts a JSON number, a numeric string or null.
type optInt int

func (n *optInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*n = optInt(val)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			*n = 0
			return nil
		}
		*n = optInt(i)
	default:
		*n = 0
	}
	return nil
}
