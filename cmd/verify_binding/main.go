// verify_binding 无窗口运行一个权威端和若干观察端，
// 随机打乱接管、加入和更新的顺序，检查所有上下文最终的能力绑定一致。
//
// 用法:
//
//	go run ./cmd/verify_binding -observers 4 -players 2 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"reflect"
	"sort"

	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/game"
	"github.com/decker502/aura/pkg/replication"
	"github.com/google/uuid"
)

var (
	observers = flag.Int("observers", 3, "观察端数量")
	players   = flag.Int("players", 2, "玩家数量")
	steps     = flag.Int("steps", 120, "模拟步数")
	seed      = flag.Int64("seed", 1, "随机种子")
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
)

// runOptions 一次验证运行的参数
type runOptions struct {
	Observers int
	Players   int
	Steps     int
	Seed      int64
	Verbose   bool
}

// contextReport 一个上下文的最终绑定状态
type contextReport struct {
	Name  string
	Bound map[uuid.UUID]uuid.UUID
	Binds int
}

// runReport 验证结果
type runReport struct {
	Authority contextReport
	Observers []contextReport
	Diverged  []string
}

// run 执行一次随机顺序的模拟
func run(opts runOptions) (*runReport, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	cfg := config.DefaultAuraConfig()
	cfg.World.Verbose = opts.Verbose

	hub := replication.NewLocalHub()
	defer hub.Close()

	authority, err := game.NewAuthorityWorld(game.WorldOptions{Name: "authority", Config: cfg, Publisher: hub})
	if err != nil {
		return nil, err
	}

	// 每个观察端和每个玩家在随机的一步加入，最晚在一半步数时
	half := opts.Steps/2 + 1
	joinAt := make([]int, opts.Observers)
	for i := range joinAt {
		joinAt[i] = rng.Intn(half)
	}
	spawnAt := make([]int, opts.Players)
	for i := range spawnAt {
		spawnAt[i] = rng.Intn(half)
	}

	worlds := make([]*game.World, opts.Observers)
	for step := 0; step < opts.Steps; step++ {
		for i, at := range joinAt {
			if at == step {
				inbox, err := hub.Join()
				if err != nil {
					return nil, err
				}
				worlds[i], err = game.NewObserverWorld(game.WorldOptions{
					Name:   fmt.Sprintf("observer-%d", i+1),
					Config: cfg,
					Inbox:  inbox,
				})
				if err != nil {
					return nil, err
				}
			}
		}
		for i, at := range spawnAt {
			if at == step {
				x := rng.Float64() * cfg.World.Width
				y := rng.Float64() * cfg.World.Height
				if _, _, err := authority.SpawnPlayer(uuid.Nil, x, y, i == 0); err != nil {
					return nil, err
				}
			}
		}

		// 每步以随机顺序更新各上下文
		order := rng.Perm(opts.Observers + 1)
		for _, idx := range order {
			if idx == opts.Observers {
				authority.Update(1.0 / 60)
				continue
			}
			if worlds[idx] != nil {
				worlds[idx].Update(1.0 / 60)
			}
		}
	}

	// 收尾：让所有观察端处理完剩余消息
	for _, w := range worlds {
		if w != nil {
			w.Update(1.0 / 60)
		}
	}

	report := &runReport{
		Authority: contextReport{Name: authority.Name, Bound: authority.BoundBodies(), Binds: authority.Binding.BindCount()},
	}
	for _, w := range worlds {
		if w == nil {
			continue
		}
		r := contextReport{Name: w.Name, Bound: w.BoundBodies(), Binds: w.Binding.BindCount()}
		report.Observers = append(report.Observers, r)
		if !reflect.DeepEqual(r.Bound, report.Authority.Bound) {
			report.Diverged = append(report.Diverged, w.Name)
		}
	}
	return report, nil
}

func printContext(r contextReport) {
	fmt.Printf("%-12s bodies=%d binds=%d\n", r.Name, len(r.Bound), r.Binds)
	netIDs := make([]uuid.UUID, 0, len(r.Bound))
	for id := range r.Bound {
		netIDs = append(netIDs, id)
	}
	sort.Slice(netIDs, func(i, j int) bool { return netIDs[i].String() < netIDs[j].String() })
	for _, id := range netIDs {
		fmt.Printf("    body %s -> player %s\n", id, r.Bound[id])
	}
}

func main() {
	flag.Parse()

	report, err := run(runOptions{
		Observers: *observers,
		Players:   *players,
		Steps:     *steps,
		Seed:      *seed,
		Verbose:   *verbose,
	})
	if err != nil {
		log.Fatalf("运行失败: %v", err)
	}

	printContext(report.Authority)
	for _, r := range report.Observers {
		printContext(r)
	}

	if len(report.Diverged) > 0 {
		fmt.Printf("\n❌ 绑定不一致: %v\n", report.Diverged)
		os.Exit(1)
	}
	fmt.Printf("\n✅ %d 个观察端与权威端绑定一致\n", len(report.Observers))
}
