package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/curator/internal/config"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
	"github.com/okian/curator/pkg/logger"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRoot()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeForest(t *testing.T) string {
	t.Helper()
	ts := time.Now().Add(-time.Hour).Unix()
	f := model.Forest{
		"p1": {ID: "p1", Reviews: map[string]*model.Review{
			"p1.r1": {ID: "p1.r1", Sender: "w1", LikeHistory: []model.LikeEvent{
				{Sender: "c1", Timestamp: ts, Action: model.ActionLike, TxID: "t1"},
			}},
		}},
	}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "forest.json")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestComputeCommand(t *testing.T) {
	convey.Convey("Given a forest snapshot on disk", t, func() {
		path := writeForest(t)

		convey.Convey("When the leaderboard is computed as JSON", func() {
			out, err := run("compute", "--snapshot", path)

			convey.So(err, convey.ShouldBeNil)
			var got computeOutput
			convey.So(json.Unmarshal([]byte(out), &got), convey.ShouldBeNil)

			convey.Convey("Then the single curator leads", func() {
				convey.So(got.Summary.Projects, convey.ShouldEqual, 1)
				convey.So(got.Leaderboard, convey.ShouldHaveLength, 1)
				convey.So(got.Leaderboard[0].Address, convey.ShouldEqual, "c1")
				convey.So(got.Leaderboard[0].Score, convey.ShouldAlmostEqual, 0.15625)
				convey.So(got.Curator, convey.ShouldBeNil)
			})
		})

		convey.Convey("When one curator is printed as YAML", func() {
			out, err := run("compute", "--snapshot", path, "--address", "c1", "--format", "yaml")

			convey.So(err, convey.ShouldBeNil)
			var got struct {
				Curator types.CuratorIndex `yaml:"curator"`
			}
			convey.So(yaml.Unmarshal([]byte(out), &got), convey.ShouldBeNil)
			convey.So(got.Curator.Rank, convey.ShouldEqual, 1)
			convey.So(got.Curator.TotalLikesGiven, convey.ShouldEqual, 1)
			convey.So(out, convey.ShouldContainSubstring, "overallIndex")
		})

		convey.Convey("When the flags are wrong", func() {
			_, err := run("compute", "--snapshot", path, "--format", "xml")
			convey.So(err, convey.ShouldNotBeNil)

			_, err = run("compute", "--snapshot", path, "--at", "yesterday")
			convey.So(err, convey.ShouldNotBeNil)

			_, err = run("compute")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSeedCommand(t *testing.T) {
	convey.Convey("Given the seed command", t, func() {
		out := filepath.Join(t.TempDir(), "seed.json")

		convey.Convey("When a forest is generated to a file", func() {
			_, err := run("seed", "--projects", "3", "--reviews", "2", "--out", out)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it has the requested shape and can be computed", func() {
				f, err := model.ReadForestFile(out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(f, convey.ShouldHaveLength, 3)
				for _, p := range f {
					convey.So(p.Reviews, convey.ShouldHaveLength, 2)
				}

				res, err := run("compute", "--snapshot", out, "--top", "0")
				convey.So(err, convey.ShouldBeNil)
				convey.So(res, convey.ShouldContainSubstring, `"leaderboard"`)
			})
		})

		convey.Convey("When the same seed is used twice", func() {
			a, err1 := run("seed", "--seed", "9")
			b, err2 := run("seed", "--seed", "9")

			convey.So(err1, convey.ShouldBeNil)
			convey.So(err2, convey.ShouldBeNil)
			convey.So(strings.Count(a, "txId"), convey.ShouldEqual, strings.Count(b, "txId"))
		})

		convey.Convey("When the shape is invalid", func() {
			_, err := run("seed", "--projects", "0")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestServeWiring(t *testing.T) {
	convey.Convey("Given a service built from default configuration", t, func() {
		cfg := config.New()
		cfg.SnapshotPath = writeForest(t)
		cfg.WorkerCount = 1

		convey.So(logger.Init(logger.WithWriter(io.Discard)), convey.ShouldBeNil)

		svc := newService(cfg)
		ctx := context.Background()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		srv := httptest.NewServer(newHandler(cfg, svc))
		defer srv.Close()

		convey.Convey("Then the leaderboard is served", func() {
			resp, err := http.Get(srv.URL + "/leaderboard")
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			var entries []types.Entry
			convey.So(json.NewDecoder(resp.Body).Decode(&entries), convey.ShouldBeNil)
			convey.So(entries, convey.ShouldHaveLength, 1)
		})

		convey.Convey("Then a posted like is accepted", func() {
			body := `{"itemId":"p1.r1","sender":"c2","txId":"t2"}`
			resp, err := http.Post(srv.URL+"/likes", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)
		})

		convey.Convey("Then system metrics can be sampled", func() {
			updateSystemMetrics()
			resp, err := http.Get(srv.URL + "/metrics")
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			b, _ := io.ReadAll(resp.Body)
			convey.So(string(b), convey.ShouldContainSubstring, "curator_index_system_goroutine_count")
		})
	})
}
