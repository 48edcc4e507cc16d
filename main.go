package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/game"
	"github.com/decker502/aura/pkg/replication"
	"github.com/decker502/aura/pkg/utils"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var (
	configPath = flag.String("config", "data/aura.yaml", "配置文件路径（不存在时使用默认配置）")
	connectURL = flag.String("connect", "", "以观察端身份连接到 ws://host:port/path")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
)

// Game 实现 ebiten.Game，驱动本进程内的所有执行上下文
type Game struct {
	cfg      *config.AuraConfig
	scenes   *game.SceneManager
	worlds   []*game.World
	settings *game.SettingsManager

	// client 观察端的网络连接，其他角色为 nil
	client *replication.Client
}

// Update 每帧更新所有执行上下文
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.scenes.SaveAll()
		return ebiten.Termination
	}

	if g.client != nil {
		select {
		case <-g.client.Done():
			return fmt.Errorf("replication connection lost: %w", g.client.Err())
		default:
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.scenes.Cycle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		s := g.settings.GetSettings()
		g.settings.SetHoverHighlightEnabled(!s.HoverHighlightEnabled)
		for _, w := range g.worlds {
			w.ApplySettings()
		}
		log.Printf("[Main] hover highlight enabled: %v", g.settings.GetSettings().HoverHighlightEnabled)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.settings.SetShowDebug(!g.settings.GetSettings().ShowDebug)
	}

	g.scenes.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

// Draw 绘制当前选中的执行上下文
func (g *Game) Draw(screen *ebiten.Image) {
	g.scenes.Draw(screen)
}

// Layout 返回逻辑屏幕尺寸（与世界尺寸一致）
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.cfg.World.Width), int(g.cfg.World.Height)
}

func (g *Game) addWorld(w *game.World) {
	g.worlds = append(g.worlds, w)
	g.scenes.Add(w)
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *connectURL != "" {
		cfg.Network.Role = config.RoleObserver
	}
	if *verbose {
		cfg.World.Verbose = true
	}

	settings := game.OpenSettingsManager("aura")
	input := cfg.Input
	if !settings.GetSettings().CursorVisible {
		input.HideMouseCursor = true
	}
	utils.ApplyInputMode(input)

	g := &Game{
		cfg:      cfg,
		scenes:   game.NewSceneManager(),
		settings: settings,
	}

	var shutdown func()
	switch cfg.Network.Role {
	case config.RoleObserver:
		shutdown, err = setupObserver(g, cfg, settings)
	default:
		shutdown, err = setupAuthority(g, cfg, settings)
	}
	if err != nil {
		log.Fatalf("启动失败: %v", err)
	}
	defer shutdown()

	ebiten.SetWindowSize(int(cfg.World.Width), int(cfg.World.Height))
	ebiten.SetWindowTitle(fmt.Sprintf("Aura - %s", cfg.Network.Role))
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Printf("[Main] game loop ended: %v", err)
	}
}

// loadConfig 加载配置文件；默认路径的文件不存在时只使用默认值和环境变量
func loadConfig(path string) (*config.AuraConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Printf("[Main] config %s not found, using defaults", path)
		path = ""
	}
	return config.LoadAuraConfig(path)
}

// setupAuthority 创建权威上下文，监听模式下同时启动复制服务和进程内观察端
func setupAuthority(g *Game, cfg *config.AuraConfig, settings *game.SettingsManager) (func(), error) {
	var (
		publisher replication.Publisher
		hub       *replication.LocalHub
		server    *replication.Server
		httpSrv   *http.Server
	)

	if cfg.Network.Role == config.RoleListen {
		hub = replication.NewLocalHub()
		server = replication.NewServer()
		publisher = replication.Fanout{hub, server}

		mux := http.NewServeMux()
		mux.Handle(cfg.Network.Path, server)
		httpSrv = &http.Server{Addr: cfg.Network.Addr, Handler: mux}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[Main] replication server stopped: %v", err)
			}
		}()
		log.Printf("[Main] replication listening on ws://%s%s", cfg.Network.Addr, cfg.Network.Path)
	}

	authority, err := game.NewAuthorityWorld(game.WorldOptions{
		Name:      "authority",
		Config:    cfg,
		Pointer:   utils.EbitenPointer{},
		Axes:      utils.NewEbitenAxes(),
		Publisher: publisher,
		Settings:  settings,
	})
	if err != nil {
		return nil, err
	}
	if _, _, err := authority.SpawnPlayer(uuid.Nil, cfg.World.Width/2, cfg.World.Height*2/3, true); err != nil {
		return nil, err
	}
	g.addWorld(authority)

	// 进程内观察端不拥有本地指针输入
	if hub != nil {
		for i := 0; i < cfg.Network.LocalObservers; i++ {
			inbox, err := hub.Join()
			if err != nil {
				return nil, err
			}
			observer, err := game.NewObserverWorld(game.WorldOptions{
				Name:     fmt.Sprintf("observer-%d", i+1),
				Config:   cfg,
				Inbox:    inbox,
				Settings: settings,
			})
			if err != nil {
				return nil, err
			}
			g.addWorld(observer)
		}
	}

	return func() {
		if httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Close()
			_ = httpSrv.Shutdown(ctx)
		}
		if hub != nil {
			_ = hub.Close()
		}
	}, nil
}

// setupObserver 连接到监听服务器并创建观察上下文
func setupObserver(g *Game, cfg *config.AuraConfig, settings *game.SettingsManager) (func(), error) {
	url := *connectURL
	if url == "" {
		url = fmt.Sprintf("ws://%s%s", cfg.Network.Addr, cfg.Network.Path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := replication.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	log.Printf("[Main] connected to %s", url)

	observer, err := game.NewObserverWorld(game.WorldOptions{
		Name:     "observer",
		Config:   cfg,
		Pointer:  utils.EbitenPointer{},
		Inbox:    client.Inbox(),
		Settings: settings,
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	g.addWorld(observer)
	g.client = client

	return func() { _ = client.Close() }, nil
}
