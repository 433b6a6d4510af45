package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/okian/lanes/internal/adapters/repository"
	"github.com/okian/lanes/internal/domain/exclusion"
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/domain/types"
	"github.com/okian/lanes/internal/engine"
	"github.com/okian/lanes/internal/importer"
	"github.com/okian/lanes/pkg/logger"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	recordsFlag  = "records"
	eventFlag    = "event"
	teamsFlag    = "teams"
	topNFlag     = "top-n"
	scoringFlag  = "scoring"
	excludeFlag  = "exclude"
	parallelFlag = "parallel"
)

func rankCommand() *cli.Command {
	return &cli.Command{
		Name:  "rank",
		Usage: "Rank an event or assemble relays from YAML record files",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     recordsFlag,
				Aliases:  []string{"r"},
				Usage:    "YAML record file; repeat for more",
				Required: true,
			},
			&cli.StringFlag{
				Name:     eventFlag,
				Aliases:  []string{"e"},
				Usage:    "Individual event (\"100 Free\") or relay type (relay_medley)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  teamsFlag,
				Usage: "Team-season keys such as 1:2024; every team-season when empty",
			},
			&cli.IntFlag{Name: topNFlag, Value: 8, Usage: "Number of places, 1 to 16"},
			&cli.StringFlag{Name: scoringFlag, Value: string(engine.Unscored), Usage: "unscored or scored"},
			&cli.StringFlag{Name: excludeFlag, Usage: "Comma separated time ids to leave out"},
			&cli.IntFlag{Name: parallelFlag, Value: 1, Usage: "Relay pools assembled at once"},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Value:   stdoutCLIName,
				Usage:   "Where to write the YAML result",
			},
		},
		Action: runRank,
	}
}

func runRank(cCtx *cli.Context) error {
	ctx, cancel := context.WithCancel(cCtx.Context)
	defer cancel()

	store := repository.NewTreapStore(ctx)
	defer func() { _ = store.Close() }()
	if err := loadRecords(ctx, store, cCtx.StringSlice(recordsFlag)); err != nil {
		return err
	}

	mode, err := engine.ParseMode(cCtx.String(scoringFlag))
	if err != nil {
		return err
	}
	excl, err := exclusion.Parse(cCtx.String(excludeFlag))
	if err != nil {
		return err
	}
	teams, err := selectTeamSeasons(ctx, store, cCtx.StringSlice(teamsFlag))
	if err != nil {
		return err
	}
	p := engine.Params{
		Event:       cCtx.String(eventFlag),
		TopN:        cCtx.Int(topNFlag),
		Mode:        mode,
		TeamSeasons: teams,
		Exclusions:  excl,
	}
	if err := p.Validate(); err != nil {
		return err
	}

	records, err := store.Query(ctx, repository.RecordQuery{Events: p.Events(), TeamSeasons: teams, Exclude: excl})
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithParallelism(cCtx.Int(parallelFlag)))
	res := types.Rankings{Event: p.Event, Title: p.Event, Relay: p.IsRelay(), Mode: string(mode), TopN: p.TopN}
	if p.IsRelay() {
		res.Title = p.RelayType().Title()
		res.Rows, err = eng.Relay(engine.Pools(records, teams), p)
	} else {
		res.Entries, err = eng.Individual(records, p)
	}
	if err != nil {
		return err
	}

	out, err := openOutput(cCtx, cCtx.String(outputFlag))
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode yaml: %w", err)
	}
	return out.Close()
}

func loadRecords(ctx context.Context, store repository.Store, paths []string) error {
	log := logger.Get().Named("rank")
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open records: %w", err)
		}
		raws, err := importer.ReadYAML(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i, raw := range raws {
			rec, err := raw.Normalize()
			if err != nil {
				log.Warn(ctx, "skipping record", logger.String("file", path), logger.Int("index", i), logger.Error(err))
				continue
			}
			if _, err := store.Insert(ctx, rec); err != nil {
				return fmt.Errorf("%s: record %d: %w", path, i, err)
			}
		}
	}
	log.Debug(ctx, "records loaded", logger.Int("count", store.Count(ctx)))
	return nil
}

// selectTeamSeasons resolves keys against the store in selection-list
// order, dropping repeats. No keys selects every team-season in the store.
func selectTeamSeasons(ctx context.Context, store repository.Store, keys []string) ([]model.TeamSeason, error) {
	all, err := store.TeamSeasons(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return all, nil
	}
	byKey := make(map[string]model.TeamSeason, len(all))
	for _, ts := range all {
		byKey[ts.Key()] = ts
	}
	out := make([]model.TeamSeason, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		team, season, err := model.ParseTeamSeasonKey(k)
		if err != nil {
			return nil, err
		}
		norm := model.TeamSeason{TeamID: team, Season: season}.Key()
		ts, ok := byKey[norm]
		if !ok {
			return nil, fmt.Errorf("no records for team-season %s", k)
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, ts)
	}
	slices.SortFunc(out, model.CompareTeamSeasons)
	return out, nil
}
