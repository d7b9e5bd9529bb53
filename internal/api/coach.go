package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pingpong-tracker/internal/config"
	"pingpong-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// FallbackCommentary is shown whenever the advisory call cannot produce a
// result. The client never returns an error to its caller.
const FallbackCommentary = "The AI coach is busy right now, please try again later."

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// MatchupPlayer is one athlete as presented to the coach.
type MatchupPlayer struct {
	Name   string
	Rank   domain.Rank
	Points int
}

// CoachClient asks a Gemini model for pre-match commentary. It is advisory
// only: settlement never waits on it and its failure never surfaces as an
// error.
type CoachClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewCoachClient(cfg *config.Config, logger zerolog.Logger) *CoachClient {
	return &CoachClient{
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		baseURL: defaultBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// AnalyzeMatchup returns free-text commentary for the proposed matchup, or
// the fallback string when the model is unreachable or unconfigured.
func (c *CoachClient) AnalyzeMatchup(ctx context.Context, team1, team2 []MatchupPlayer, history []domain.Match) string {
	if c.apiKey == "" {
		c.logger.Debug().Msg("no Gemini API key configured, returning fallback commentary")
		return FallbackCommentary
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: c.buildPrompt(team1, team2, history)}}}},
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to marshal coach request")
		return FallbackCommentary
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("coach request failed")
		return FallbackCommentary
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("coach request rejected")
		return FallbackCommentary
	}

	var result generateContentResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.logger.Warn().Err(err).Msg("failed to decode coach response")
		return FallbackCommentary
	}

	text := result.text()
	if text == "" {
		c.logger.Warn().Msg("coach response contained no text")
		return FallbackCommentary
	}
	return text
}

func (c *CoachClient) buildPrompt(team1, team2 []MatchupPlayer, history []domain.Match) string {
	var b strings.Builder
	b.WriteString("You are a professional table tennis coach. Analyze the upcoming match between:\n")
	b.WriteString("Side 1: " + formatSide(team1) + "\n")
	b.WriteString("Side 2: " + formatSide(team2) + "\n")
	fmt.Fprintf(&b, "The club has %d recorded matches.\n", len(history))
	b.WriteString(`Based on their points and ranks (rank A is the highest, H the lowest), give:
1. A prediction of which side has the advantage.
2. Recommended tactics for the weaker side to win.
3. An expected win probability (%).
Answer briefly and concisely.`)
	return b.String()
}

func formatSide(players []MatchupPlayer) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = fmt.Sprintf("%s (rank %s, %d points)", p.Name, p.Rank, p.Points)
	}
	return strings.Join(parts, " & ")
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Candidates[0].Content.Parts[0].Text)
}
