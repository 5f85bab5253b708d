// Package tuning loads the stat-curve document produced by the offline
// calibration harness. The simulator only consumes the resolved numbers.
package tuning

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"pickleball-sim/internal/config"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Curve struct {
	Slope  float64 `json:"slope"`
	Offset float64 `json:"offset"`
}

func (c Curve) Apply(v int) float64 {
	return c.Offset + c.Slope*float64(v)
}

var identity = Curve{Slope: 1}

type Params struct {
	Sensitivity       float64                   `json:"sensitivity"`
	StatCurves        map[domain.StatType]Curve `json:"stat_curves"`
	NPCEquipmentScale float64                   `json:"npc_equipment_scale"`
}

func Default() Params {
	return Params{
		Sensitivity:       1.0,
		StatCurves:        map[domain.StatType]Curve{},
		NPCEquipmentScale: 1.0,
	}
}

func (p Params) Curve(stat domain.StatType) Curve {
	if c, ok := p.StatCurves[stat]; ok {
		return c
	}
	return identity
}

func (p Params) Validate() error {
	if p.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive, got %v", p.Sensitivity)
	}
	if p.NPCEquipmentScale <= 0 {
		return fmt.Errorf("npc equipment scale must be positive, got %v", p.NPCEquipmentScale)
	}
	for stat, c := range p.StatCurves {
		if c.Slope <= 0 {
			return fmt.Errorf("curve for %s must have a positive slope", stat)
		}
	}
	return nil
}

// Parse decodes a tuning document; omitted fields keep their defaults.
func Parse(data []byte) (Params, error) {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("failed to decode tuning document: %w", err)
	}
	if p.StatCurves == nil {
		p.StatCurves = map[domain.StatType]Curve{}
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("invalid tuning document: %w", err)
	}
	return p, nil
}

func LoadFile(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return Parse(data)
}

type Fetcher struct {
	client *fasthttp.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &fasthttp.Client{
			ReadTimeout:         constants.TuningFetchTimeout,
			WriteTimeout:        constants.TuningFetchTimeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (Params, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.TuningFetchTimeout)
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return Params{}, fmt.Errorf("failed to fetch tuning document: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return Params{}, fmt.Errorf("tuning source returned status %d", resp.StatusCode())
	}
	return Parse(resp.Body())
}

// Load resolves TUNING_SOURCE: empty means defaults, an http(s) URL is
// fetched, anything else is read as a file path.
func Load(cfg *config.Config, logger zerolog.Logger) (Params, error) {
	source := strings.TrimSpace(cfg.TuningSource)
	if source == "" {
		logger.Info().Msg("no tuning source configured, using defaults")
		return Default(), nil
	}

	var (
		params Params
		err    error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ctx, cancel := context.WithTimeout(context.Background(), constants.TuningFetchTimeout)
		defer cancel()
		params, err = NewFetcher().Fetch(ctx, source)
	} else {
		params, err = LoadFile(source)
	}
	if err != nil {
		logger.Error().Err(err).Str("source", source).Msg("failed to load tuning parameters")
		return Params{}, err
	}

	logger.Info().
		Str("source", source).
		Float64("sensitivity", params.Sensitivity).
		Int("curves", len(params.StatCurves)).
		Float64("npc_equipment_scale", params.NPCEquipmentScale).
		Msg("tuning parameters loaded")
	return params, nil
}
