package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/lanes/internal/adapters/repository"
	service "github.com/okian/lanes/internal/app"
	"github.com/okian/lanes/internal/domain/model"
	"github.com/okian/lanes/internal/engine"
	. "github.com/smartystreets/goconvey/convey"
)

type swim struct {
	id      int64
	athlete int64
	team    int64
	secs    float64
}

var teamNames = map[int64]string{1: "Stanford", 2: "Cal"}
var teamSeasons = map[int64]int{1: 2024, 2: 2023}

func seed(ctx context.Context, svc *service.Service, swims []swim) error {
	for _, s := range swims {
		_, err := svc.Submit(ctx, model.RawRecord{
			ID:          s.id,
			AthleteID:   s.athlete,
			AthleteName: fmt.Sprintf("Swimmer %d", s.athlete),
			TeamID:      s.team,
			TeamName:    teamNames[s.team],
			Season:      teamSeasons[s.team],
			Event:       "50 Free",
			Seconds:     s.secs,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func waitForRecords(svc *service.Service, n int) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := svc.GetStats()["records"].(int); got >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service seeded with two team-seasons", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(100),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		swims := []swim{
			{1, 11, 1, 21.5}, {2, 12, 1, 22.0}, {3, 13, 1, 22.5}, {4, 14, 1, 23.0},
			{5, 21, 2, 21.0}, {6, 22, 2, 21.2}, {7, 23, 2, 21.4}, {8, 24, 2, 21.6},
		}
		So(seed(ctx, svc, swims), ShouldBeNil)
		So(waitForRecords(svc, len(swims)), ShouldBeTrue)

		Convey("When listing team-seasons", func() {
			choices, err := svc.TeamSeasons(ctx)

			Convey("Then the newest season comes first", func() {
				So(err, ShouldBeNil)
				So(len(choices), ShouldEqual, 2)
				So(choices[0].Key, ShouldEqual, "1:2024")
				So(choices[0].Label, ShouldEqual, "2024 Stanford")
				So(choices[1].Label, ShouldEqual, "2023 Cal")
			})
		})

		Convey("When ranking an individual event across both teams", func() {
			res, err := svc.Rankings(ctx, service.RankingQuery{
				Event: "50 Free", Teams: []string{"1:2024", "2:2023"}, TopN: 3,
			})

			Convey("Then the fastest three are placed with individual points", func() {
				So(err, ShouldBeNil)
				So(res.Relay, ShouldBeFalse)
				So(len(res.Entries), ShouldEqual, 3)
				So(res.Entries[0].TimeID, ShouldEqual, 5)
				So(res.Entries[0].Points, ShouldEqual, 20)
				So(res.Entries[1].TimeID, ShouldEqual, 6)
				So(res.Entries[2].TimeID, ShouldEqual, 7)
				So(res.Entries[2].Points, ShouldEqual, 16)
			})
		})

		Convey("When the fastest swim is excluded", func() {
			res, err := svc.Rankings(ctx, service.RankingQuery{
				Event: "50 Free", Teams: []string{"2:2023"}, TopN: 2, Exclude: "5",
			})

			Convey("Then the next swimmer moves up", func() {
				So(err, ShouldBeNil)
				So(len(res.Entries), ShouldEqual, 2)
				So(res.Entries[0].TimeID, ShouldEqual, 6)
				So(res.Entries[0].Placement, ShouldEqual, 1)
			})
		})

		Convey("When building 200 free relays", func() {
			res, err := svc.Rankings(ctx, service.RankingQuery{
				Event: string(model.Relay200Free), Teams: []string{"1:2024", "2:2023"},
			})

			Convey("Then each team fields one squad and the faster squad leads", func() {
				So(err, ShouldBeNil)
				So(res.Relay, ShouldBeTrue)
				So(res.Title, ShouldEqual, "200 Free Relay")
				So(res.TopN, ShouldEqual, 8)
				So(len(res.Rows), ShouldEqual, 8)
				So(res.Rows[0].ComboRank, ShouldEqual, 1)
				So(res.Rows[0].Season, ShouldEqual, 2023)
				So(res.Rows[0].Total, ShouldAlmostEqual, 85.2, 1e-9)
				So(res.Rows[0].Points, ShouldBeNil)
				So(res.Rows[4].ComboRank, ShouldEqual, 2)
				So(res.Rows[4].Season, ShouldEqual, 2024)
			})
		})

		Convey("When the request names an unknown team-season", func() {
			_, err := svc.Rankings(ctx, service.RankingQuery{Event: "50 Free", Teams: []string{"9:2020"}})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrUnknownTeamSeason), ShouldBeTrue)
			})
		})

		Convey("When top_n or mode are out of range", func() {
			_, errTop := svc.Rankings(ctx, service.RankingQuery{Event: "50 Free", Teams: []string{"1:2024"}, TopN: 17})
			_, errMode := svc.Rankings(ctx, service.RankingQuery{Event: "50 Free", Teams: []string{"1:2024"}, Mode: "points"})
			_, errTeams := svc.Rankings(ctx, service.RankingQuery{Event: "50 Free"})

			Convey("Then the engine's error kinds come back", func() {
				So(errors.Is(errTop, engine.ErrInvalidTopN), ShouldBeTrue)
				So(errors.Is(errMode, engine.ErrInvalidMode), ShouldBeTrue)
				So(errors.Is(errTeams, engine.ErrNoTeamSeason), ShouldBeTrue)
			})
		})

		Convey("When a record is deleted", func() {
			So(svc.Delete(ctx, 5), ShouldBeNil)
			res, err := svc.Rankings(ctx, service.RankingQuery{Event: "50 Free", Teams: []string{"2:2023"}, TopN: 1})

			Convey("Then it no longer ranks and can be submitted again", func() {
				So(err, ShouldBeNil)
				So(res.Entries[0].TimeID, ShouldEqual, 6)
				So(errors.Is(svc.Delete(ctx, 5), repository.ErrNotFound), ShouldBeTrue)
				So(seed(ctx, svc, []swim{{5, 21, 2, 21.0}}), ShouldBeNil)
				So(waitForRecords(svc, len(swims)), ShouldBeTrue)
			})
		})
	})
}

func TestServiceRelayTiesFollowSelectionListOrder(t *testing.T) {
	Convey("Given two team-seasons whose squads swim identical totals", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(100), service.WithDedupeSize(100))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		swims := []swim{
			{0, 11, 1, 22.0}, {0, 12, 1, 22.0}, {0, 13, 1, 22.0}, {0, 14, 1, 22.0},
			{0, 21, 2, 22.0}, {0, 22, 2, 22.0}, {0, 23, 2, 22.0}, {0, 24, 2, 22.0},
		}
		So(seed(ctx, svc, swims), ShouldBeNil)
		So(waitForRecords(svc, len(swims)), ShouldBeTrue)

		rank := func(teams ...string) []string {
			res, err := svc.Rankings(ctx, service.RankingQuery{
				Event: string(model.Relay200Free), Teams: teams, Mode: "scored",
			})
			So(err, ShouldBeNil)
			out := make([]string, 0, len(res.Rows))
			for _, row := range res.Rows {
				pts := 0
				if row.Points != nil {
					pts = *row.Points
				}
				out = append(out, fmt.Sprintf("%d|%d|%s|%d|%d", row.ComboRank, row.Season, row.Team, row.AthleteID, pts))
			}
			return out
		}

		Convey("When the same team-seasons are listed in either order", func() {
			forward := rank("1:2024", "2:2023")
			backward := rank("2:2023", "1:2024")

			Convey("Then placements and points are identical", func() {
				So(backward, ShouldResemble, forward)
			})

			Convey("Then the newer season takes the tie", func() {
				So(len(forward), ShouldEqual, 8)
				So(forward[0], ShouldStartWith, "1|2024|2024 Stanford|")
				So(forward[0], ShouldEndWith, "|40")
				So(forward[4], ShouldStartWith, "2|2023|2023 Cal|")
			})
		})

		Convey("When a team-season is listed twice", func() {
			rows := rank("1:2024", "1:2024")

			Convey("Then it fields its squad only once", func() {
				So(len(rows), ShouldEqual, 4)
				for _, r := range rows {
					So(r, ShouldStartWith, "1|2024|2024 Stanford|")
				}
			})
		})
	})
}
