package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/importer"
	"github.com/urfave/cli/v2"
)

const (
	formatFlag      = "format"
	athleteIDFlag   = "athlete-id"
	athleteNameFlag = "athlete-name"
	teamIDFlag      = "team-id"
	teamNameFlag    = "team-name"
	seasonFlag      = "season"
)

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Turn a saved personal-bests page, CSV or YAML file into a YAML record file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     inputFlag,
				Aliases:  []string{"i"},
				Usage:    "Path to the file to convert",
				Required: true,
			},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Usage:   "Where to write the YAML result. A file path or \"-\" for stdout.",
				Value:   stdoutCLIName,
			},
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "html, csv or yaml. Guessed from the file extension when empty.",
			},
			&cli.Int64Flag{Name: athleteIDFlag, Usage: "Athlete id for an HTML page"},
			&cli.StringFlag{Name: athleteNameFlag, Usage: "Athlete name for an HTML page"},
			&cli.Int64Flag{Name: teamIDFlag, Usage: "Team id for an HTML page"},
			&cli.StringFlag{Name: teamNameFlag, Usage: "Team name for an HTML page"},
			&cli.IntFlag{Name: seasonFlag, Usage: "Season year for an HTML page"},
		},
		Action: runConvert,
	}
}

func inputFormat(path, explicit string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	case ".csv":
		return "csv"
	}
	return "yaml"
}

func runConvert(cCtx *cli.Context) error {
	path := cCtx.String(inputFlag)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var records []model.RawRecord
	switch format := inputFormat(path, cCtx.String(formatFlag)); format {
	case "html":
		a := importer.Athlete{
			AthleteID:   cCtx.Int64(athleteIDFlag),
			AthleteName: cCtx.String(athleteNameFlag),
			TeamID:      cCtx.Int64(teamIDFlag),
			TeamName:    cCtx.String(teamNameFlag),
			Season:      cCtx.Int(seasonFlag),
		}
		if a.AthleteID <= 0 || a.TeamID <= 0 || a.Season <= 0 {
			return fmt.Errorf("html input needs --%s, --%s and --%s", athleteIDFlag, teamIDFlag, seasonFlag)
		}
		bests, err := importer.ParseHTML(f)
		if err != nil {
			return err
		}
		for _, pb := range bests {
			records = append(records, pb.Record(a))
		}
	case "csv":
		if records, err = importer.ParseCSV(f); err != nil {
			return err
		}
	case "yaml", "yml":
		if records, err = importer.ReadYAML(f); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	// Drop what the service would refuse, so files stay loadable.
	kept := records[:0]
	for _, r := range records {
		if _, err := r.Normalize(); err != nil {
			fmt.Fprintf(cCtx.App.ErrWriter, "skipping record: %v\n", err)
			continue
		}
		kept = append(kept, r)
	}

	out, err := openOutput(cCtx, cCtx.String(outputFlag))
	if err != nil {
		return err
	}
	if err := importer.WriteYAML(out, kept); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
