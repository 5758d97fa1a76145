package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"contextchef/internal/llm"
	"contextchef/internal/recipe"

	"github.com/PuerkitoBio/goquery"
)

// RecipeSaver stores extracted recipes into the catalog.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// Clipper fetches recipe pages and turns them into structured catalog
// entries.
type Clipper struct {
	saver   RecipeSaver
	textGen llm.TextGenerator
}

// NewClipper creates a new Clipper instance.
func NewClipper(saver RecipeSaver, textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		saver:   saver,
		textGen: textGen,
	}
}

// ClipURL fetches the URL, extracts the recipe using the LLM, and saves it
// into the catalog.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "ingredients": [
    {"name": "item", "quantity": 1, "unit": "cup", "optional": false, "substitutions": ["alternative"]}
  ],
  "nutrition_per_serving": {"kcal": 400, "protein_g": 20, "carb_g": 40, "fat_g": 10},
  "servings": 4,
  "difficulty": "easy|medium|hard",
  "estimated_cost_per_serving": 3.50,
  "prep_time_minutes": 15,
  "cook_time_minutes": 30,
  "tags": ["dinner", "main"],
  "cuisine": "italian",
  "instructions": "Step-by-step instructions"
}

Quantities must be numbers. Use your best estimate for nutrition and cost when the page does not state them.
Return ONLY the raw JSON string. Do not wrap the response in markdown code blocks.

Page content:
%s
`, content)

	llmResponse, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	extracted, err := parseResponse(llmResponse)
	if err != nil {
		return nil, err
	}

	extracted.ID = recipeID(extracted.Title, url)
	extracted.SourceURL = url
	extracted.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	fillDefaults(extracted)

	if err := c.saver.Save(ctx, *extracted); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return extracted, nil
}

// parseResponse decodes the LLM output, tolerating markdown code fences the
// model sometimes adds despite instructions.
func parseResponse(response string) (*recipe.Recipe, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(cleaned), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, response)
	}
	if rec.Title == "" {
		return nil, fmt.Errorf("extracted recipe has no title")
	}
	return &rec, nil
}

func fillDefaults(rec *recipe.Recipe) {
	if rec.Servings <= 0 {
		rec.Servings = 4
	}
	switch rec.Difficulty {
	case recipe.DifficultyEasy, recipe.DifficultyMedium, recipe.DifficultyHard:
	default:
		rec.Difficulty = recipe.DifficultyMedium
	}
	if len(rec.Tags) == 0 {
		rec.Tags = []string{"main"}
	}
}

// recipeID builds a stable id from the title slug and a hash of the source
// URL, so re-clipping the same page updates in place.
func recipeID(title, url string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(slug, "-")

	h := fnv.New32a()
	h.Write([]byte(url))
	return fmt.Sprintf("%s-%08x", slug, h.Sum32())
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
