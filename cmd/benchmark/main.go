package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey    = "iters"
	profileKey  = "profile"
	equalityKey = "equality"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Time how long a write takes to propagate through w chains of h computeds",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Writes timed per graph shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile here, empty to disable",
				Value: "default.pgo",
			},
			&cli.StringFlag{
				Name:  equalityKey,
				Usage: "Equality policy, structural or identity",
				Value: reactive.EqualityStructural.String(),
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	equality, err := parseEquality(cmd.String(equalityKey))
	if err != nil {
		return err
	}

	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))
	log.Printf("warming up")
	for _, scheduling := range []reactive.Scheduling{reactive.SchedulingSync, reactive.SchedulingBatched} {
		benchmarkPropagate(scheduling, equality, iters, true)
	}
	return nil
}

func parseEquality(name string) (reactive.EqualityPolicy, error) {
	for _, p := range []reactive.EqualityPolicy{reactive.EqualityStructural, reactive.EqualityIdentity} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown equality policy %q", name)
}

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

// buildChains hangs w chains of h computeds off src, each ending in an effect.
func buildChains(rs *reactive.ReactiveSystem, src *reactive.Signal[int], w, h int) {
	for i := 0; i < w; i++ {
		var last reactive.Source[int] = src
		for j := 0; j < h; j++ {
			prev := last
			last = reactive.NewComputed(rs, func() (int, error) {
				v, err := prev.Get()
				return v + 1, err
			})
		}

		reactive.Effect(rs, func() error {
			_, err := last.Get()
			return err
		})
	}
}

func benchmarkPropagate(scheduling reactive.Scheduling, equality reactive.EqualityPolicy, iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("Propagate (%s, %s)", scheduling, equality))
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "recomputes"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := reactive.CreateReactiveSystem(func(from reactive.NodeID, err error) {
				log.Panic(err)
			}, reactive.WithScheduling(scheduling), reactive.WithEquality(equality))
			src := reactive.NewSignal(rs, 1)
			buildChains(rs, src, w, h)

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Value() + 1)
				if scheduling == reactive.SchedulingBatched {
					rs.Flush()
				}
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					rs.Stats().Recomputes,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
