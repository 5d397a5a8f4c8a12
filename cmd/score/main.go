package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"itinerary-scoring-service/internal/api/dto"
	"itinerary-scoring-service/internal/app"
	"itinerary-scoring-service/internal/config"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// score enriches a draft itinerary from a file or stdin and prints the result.
//
//	score -f draft.json
//	cat draft.json | score -city 台北
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	file := flag.String("f", "-", "draft itinerary JSON, - for stdin")
	city := flag.String("city", "", "override the draft's city")
	flag.Parse()

	if err := run(*file, *city, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(file, city string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	req, err := readDraft(file)
	if err != nil {
		return fmt.Errorf("read draft: %w", err)
	}
	if city != "" {
		req.City = city
	}

	ctx := obs.WithRequestID(context.Background(), uuid.NewString())

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	it, err := a.Scorer.Score(ctx, services.ScoreRequest{
		City:  strings.TrimSpace(req.City),
		Stops: req.ToStops(),
	})
	if err != nil && (it == nil || !errors.Is(err, services.ErrResolversUnavailable)) {
		return err
	}

	res := dto.FromItinerary(it)
	if err != nil {
		res.Warning = err.Error()
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func readDraft(path string) (dto.ScoreRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return dto.ScoreRequest{}, err
		}
		defer f.Close()
		r = f
	}

	var req dto.ScoreRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return dto.ScoreRequest{}, err
	}
	return req, nil
}
