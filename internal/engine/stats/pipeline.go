// Package stats runs a channel analysis end to end and projects it into report views.
package stats

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/engine/sources"
)

// AnalysisRequest is one viewer submission.
type AnalysisRequest struct {
	Input     string `json:"input"`
	Narrative bool   `json:"narrative,omitempty"`
}

// Analysis is the complete result of one request. Nothing in it outlives the request.
type Analysis struct {
	Request        AnalysisRequest        `json:"request"`
	Handle         string                 `json:"handle"`
	Channel        engine.ChannelRecord   `json:"channel"`
	Videos         engine.VideoCollection `json:"videos"`
	Report         Report                 `json:"report"`
	Narrative      string                 `json:"narrative,omitempty"`
	NarrativeError string                 `json:"narrative_error,omitempty"`
	Catalog        sources.CatalogStats   `json:"catalog"`
	ElapsedMS      int64                  `json:"elapsed_ms"`
}

// Analyze resolves the input, fetches the channel and its full catalog, and builds the report.
// Any failure before the report abandons the analysis; a narrative failure does not.
func Analyze(ctx context.Context, req AnalysisRequest) (a *Analysis, err error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.AnalysisTimeout)
	defer cancel()

	_ = engine.TrackOperation(ctx, "analyze", func(ctx context.Context) error {
		a, err = analyze(ctx, req)
		return err
	})

	elapsed := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = string(engine.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		slog.Warn("analysis failed", slog.String("input", req.Input),
			slog.String("kind", outcome), slog.Any("error", err))
		a = nil
	} else {
		a.ElapsedMS = elapsed.Milliseconds()
		slog.Info("analysis done", slog.String("handle", a.Handle), slog.String("channel_id", a.Channel.ID),
			slog.Int("videos", len(a.Videos)), slog.Duration("elapsed", elapsed))
	}
	engine.ObserveAnalysis(outcome, elapsed)
	return a, err
}

func analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	req.Input = strings.TrimSpace(req.Input)
	a := &Analysis{Request: req}

	id, handle, err := lookup(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	a.Handle = handle

	ch, err := sources.FetchChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Channel = ch

	videos, st, err := sources.NewCatalog().Collect(ctx, ch)
	if err != nil {
		return nil, err
	}
	a.Videos, a.Catalog = videos, st
	a.Report = BuildReport(ch, videos)

	if req.Narrative {
		text, err := Narrate(ctx, a)
		if err != nil {
			slog.Warn("narrative failed", slog.String("channel_id", ch.ID), slog.Any("error", err))
			a.NarrativeError = err.Error()
		} else {
			a.Narrative = text
		}
	}
	return a, nil
}

// Lookup runs only the resolver and the estimator lookup.
func Lookup(ctx context.Context, input string) (engine.ChannelLookupOutput, error) {
	input = strings.TrimSpace(input)
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.AnalysisTimeout)
	defer cancel()

	id, handle, err := lookup(ctx, input)
	if err != nil {
		return engine.ChannelLookupOutput{}, err
	}
	return engine.ChannelLookupOutput{Input: input, Handle: handle, ChannelID: id}, nil
}

func lookup(ctx context.Context, input string) (id, handle string, err error) {
	if input == "" {
		return "", "", engine.NewError(engine.KindInvalidInput, "input", engine.ErrEmptyInput)
	}
	handle, err = sources.ResolveHandle(input)
	if err != nil {
		return "", "", err
	}
	id, err = sources.LookupChannelID(ctx, handle)
	if err != nil {
		return "", "", err
	}
	return id, handle, nil
}
