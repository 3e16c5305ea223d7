// Package ai extracts tasks and reminders from images and audio with Gemini.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-flash-latest"

var (
	ErrNotConfigured = errors.New("gemini api key is not configured")
	ErrInvalidOutput = errors.New("invalid JSON format from AI")
)

// Model generates text from a prompt and a media.
type Model interface {
	Generate(ctx context.Context, prompt string, media []byte, mimeType string) (string, error)
}

type gemini struct {
	apiKey string
	model  string

	newClient func(context.Context, *genai.ClientConfig) (*genai.Client, error)

	mux    sync.Mutex
	client *genai.Client
}

// Gemini returns a Model backed by Gemini API.
//
// The client is created on the first successful use.
func Gemini(apiKey string, model string) Model {
	if model == "" {
		model = DefaultModel
	}
	return &gemini{apiKey: apiKey, model: model, newClient: genai.NewClient}
}

// connect returns the client, creating it when there is not yet.
// Failures are not kept: the next call tries again.
func (g *gemini) connect(ctx context.Context) (*genai.Client, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	c, err := g.newClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = c
	return c, nil
}

func (g *gemini) Generate(ctx context.Context, prompt string, media []byte, mimeType string) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}
	client, err := g.connect(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{Data: media, MIMEType: mimeType}},
		},
	}}
	result, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if result == nil {
		return "", errors.New("empty response from Gemini API")
	}
	return result.Text(), nil
}

const taskPrompt = `
Analyze this media (image or audio).
If it's an audio, transcribe it and extract the task details.
If it's an image, extract text/context.

Extract the task details and return ONLY a valid JSON object with the following fields:
- title: A concise summary of the task (max 50 chars).
- description: A clear description of what needs to be done based on the conversation/text.
  IMPORTANT FORMATTING RULES:
  1. Use **bold** syntax (double asterisks) to highlight important names, dates, values, or key terms.
  2. Use double line breaks (\n\n) to separate paragraphs strictly. Do not produce long blocks of text without spacing.
  3. Keep it professional and organized.
- estimatedTime: Make a best guess based on complexity ("Rápido", "Mediano", or "Demorado"). defaults to "Mediano".

Do NOT return markdown formatting for the JSON itself (like ` + "```json" + `). Just the raw JSON string.
IMPORTANT: Ensure the JSON is valid. Escape all newlines within strings (use \\n, not actual line breaks).
Translate everything to Portuguese (Brazil).
`

const remindersPrompt = `
You are a personal assistant.
Listen to this audio notes and extract distinct reminders/tasks.
The user might say things like "First buy milk, then call John".
Split these into separate items.

Return ONLY a valid JSON Array of strings.
Example: ["Comprar leite", "Ligar para o João"]

Translate everything to Portuguese (Brazil).
Keep it concise.
Do NOT return markdown. Just the raw JSON array.
`

// TaskDraft is a task extracted from a media, to be reviewed by users.
type TaskDraft struct {
	Title         string
	Description   string
	EstimatedTime string

	// YYYY-MM-DD
	DueDate string
}

// DraftDueIn is the days from today to the due date of drafts.
const DraftDueIn = 2

type Extractor struct {
	model Model
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Extractor) *Extractor

func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) *Extractor {
		if loc != nil {
			e.loc = loc
		}
		return e
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) *Extractor {
		e.now = now
		return e
	}
}

func New(model Model, opts ...Option) *Extractor {
	e := &Extractor{model: model, loc: time.UTC, now: time.Now}
	for _, o := range opts {
		e = o(e)
	}
	return e
}

// Task extracts a task from the media.
//
// Due date of the draft is always DraftDueIn days after today.
func (e *Extractor) Task(ctx context.Context, media []byte, mimeType string) (*TaskDraft, error) {
	text, err := e.model.Generate(ctx, taskPrompt, media, mimeType)
	if err != nil {
		return nil, err
	}

	draft := new(TaskDraft)
	if err := ParseLenient(text, draft); err != nil {
		return nil, err
	}
	if draft.EstimatedTime == "" {
		draft.EstimatedTime = kdb.EstimateMedium
	}
	draft.DueDate = e.now().In(e.loc).AddDate(0, 0, DraftDueIn).Format(rfctime.DateFormat)
	return draft, nil
}

// Reminders extracts reminders from the media.
func (e *Extractor) Reminders(ctx context.Context, media []byte, mimeType string) ([]string, error) {
	text, err := e.model.Generate(ctx, remindersPrompt, media, mimeType)
	if err != nil {
		return nil, err
	}

	reminders := []string{}
	if err := ParseLenient(text, &reminders); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(reminders))
	for _, r := range reminders {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

var fences = regexp.MustCompile("```(?:json)?")

var controlChars = regexp.MustCompile(`[\x00-\x1F]+`)

// ParseLenient unmarshals JSON generated by a model.
//
// Markdown code fences are removed. When parsing fails,
// control characters are removed and parsing is retried once.
func ParseLenient(text string, v any) error {
	text = strings.TrimSpace(fences.ReplaceAllString(text, ""))
	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}

	sanitized := controlChars.ReplaceAllString(text, "")
	if err2 := json.Unmarshal([]byte(sanitized), v); err2 != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOutput, err)
	}
	return nil
}
