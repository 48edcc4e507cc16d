package game

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/aura/pkg/components"
	"github.com/decker502/aura/pkg/config"
	"github.com/decker502/aura/pkg/ecs"
	"github.com/decker502/aura/pkg/entities"
	"github.com/decker502/aura/pkg/replication"
	"github.com/decker502/aura/pkg/systems"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// WorldRole 执行上下文的角色
type WorldRole string

const (
	// RoleAuthority 权威端：运行控制器系统并发布复制事实
	RoleAuthority WorldRole = "authority"
	// RoleObserver 观察端：只通过复制事实得知身体的归属
	RoleObserver WorldRole = "observer"
)

// WorldOptions 创建执行上下文的参数
type WorldOptions struct {
	// Name 上下文名称，用于日志
	Name   string
	Config *config.AuraConfig
	// Pointer 本地指针输入；为 nil 时不运行光标追踪
	Pointer systems.PointerSource
	// Axes 本地移动输入；为 nil 时不运行移动系统
	Axes systems.AxisSource
	// Publisher 权威端发布通道，可为 nil（单机）
	Publisher replication.Publisher
	// Inbox 观察端收件箱
	Inbox *replication.Inbox
	// Settings 用户设置，可为 nil
	Settings *SettingsManager
}

// World 一个执行上下文
//
// 每个 World 持有自己的 EntityManager，与其他 World 不共享任何内存，
// 它们之间只通过 replication 通道交换消息。实现 Scene 接口。
type World struct {
	Name string
	Role WorldRole

	EntityManager *ecs.EntityManager
	Registry      *systems.EntityIdentityRegistry
	Binding       *systems.CapabilityBindingSystem
	Controllers   *systems.ControllerSystem // 仅权威端
	Movement      *systems.MovementSystem
	CursorTrace   *systems.CursorTraceSystem
	Query         *systems.CursorSpatialQuery
	Publish       *systems.ReplicationPublishSystem // 仅权威端
	Receive       *systems.ReplicationReceiveSystem // 仅观察端
	Render        *systems.RenderSystem

	// Enemies 本上下文中的敌人实体
	Enemies []ecs.EntityID

	cfg      *config.AuraConfig
	settings *SettingsManager
	steps    uint64
	// focused 是否为窗口当前显示的上下文，只有它读取本地指针
	focused bool
}

// NewAuthorityWorld 创建权威端上下文
func NewAuthorityWorld(opts WorldOptions) (*World, error) {
	w, err := newWorld(RoleAuthority, opts)
	if err != nil {
		return nil, err
	}

	w.Controllers = systems.NewControllerSystem(w.EntityManager, w.Binding)
	if opts.Publisher != nil {
		w.Publish = systems.NewReplicationPublishSystem(w.EntityManager, opts.Publisher)
		w.Controllers.AddListener(w.Publish)
	}
	return w, nil
}

// NewObserverWorld 创建观察端上下文
func NewObserverWorld(opts WorldOptions) (*World, error) {
	if opts.Inbox == nil {
		return nil, fmt.Errorf("observer world %q requires an inbox", opts.Name)
	}
	w, err := newWorld(RoleObserver, opts)
	if err != nil {
		return nil, err
	}

	w.Receive = systems.NewReplicationReceiveSystem(w.EntityManager, opts.Inbox, w.Binding, w.Registry, w.cfg)
	w.Receive.Verbose = w.cfg.World.Verbose
	return w, nil
}

func newWorld(role WorldRole, opts WorldOptions) (*World, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultAuraConfig()
	}
	name := opts.Name
	if name == "" {
		name = string(role)
	}

	em := ecs.NewEntityManager()
	w := &World{
		Name:          name,
		Role:          role,
		EntityManager: em,
		Registry:      systems.NewEntityIdentityRegistry(em),
		Render:        systems.NewRenderSystem(em),
		cfg:           cfg,
		settings:      opts.Settings,
		focused:       true,
	}
	w.Binding = systems.NewCapabilityBindingSystem(em, w.Registry)
	w.Binding.Verbose = cfg.World.Verbose

	if opts.Axes != nil {
		w.Movement = systems.NewMovementSystem(em, opts.Axes, cfg.World.Width, cfg.World.Height)
	}
	if opts.Pointer != nil {
		w.Query = systems.NewCursorSpatialQuery(em, opts.Pointer, cfg.World.Width, cfg.World.Height)
		w.CursorTrace = systems.NewCursorTraceSystem(em, w.Query)
		w.CursorTrace.Verbose = cfg.World.Verbose
	}

	// 各上下文用相同参数生成相同的敌人布局
	enemies, err := entities.SpawnEnemyRow(em, cfg.Highlight, cfg.World.Enemies, cfg.World.Width, cfg.World.Height/3)
	if err != nil {
		return nil, fmt.Errorf("world %s: spawn enemies: %w", name, err)
	}
	w.Enemies = enemies

	w.ApplySettings()
	log.Printf("[World] %s created as %s with %d enemies", name, role, len(enemies))
	return w, nil
}

// SpawnPlayer 在权威端创建玩家身份、控制器和身体，并建立控制
//
// 参数：
//   - playerID: 玩家标识，uuid.Nil 时自动生成
//   - x, y: 身体初始位置，SnapToPlaneAtStart 时限制在世界范围内
//   - isLocal: 是否由本上下文的输入驱动
//
// 返回：
//   - controller, body: 控制器和身体实体
//   - error: 非权威端或创建失败时返回错误
func (w *World) SpawnPlayer(playerID uuid.UUID, x, y float64, isLocal bool) (controller, body ecs.EntityID, err error) {
	if w.Role != RoleAuthority {
		return 0, 0, fmt.Errorf("world %s: players can only be spawned on the authority", w.Name)
	}

	if w.cfg.Character.SnapToPlaneAtStart {
		x = math.Max(0, math.Min(w.cfg.World.Width, x))
		y = math.Max(0, math.Min(w.cfg.World.Height, y))
	}

	playerState, err := entities.NewPlayerStateEntity(w.EntityManager, w.cfg.PlayerState, playerID)
	if err != nil {
		return 0, 0, fmt.Errorf("world %s: %w", w.Name, err)
	}
	controller, err = entities.NewPlayerControllerEntity(w.EntityManager, playerState, isLocal)
	if err != nil {
		return 0, 0, fmt.Errorf("world %s: %w", w.Name, err)
	}
	body, err = entities.NewCharacterEntity(w.EntityManager, w.cfg.Character, uuid.Nil, x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("world %s: %w", w.Name, err)
	}
	if err := w.Controllers.Possess(controller, body); err != nil {
		return 0, 0, fmt.Errorf("world %s: %w", w.Name, err)
	}
	return controller, body, nil
}

// Update 执行一步：复制收件箱 → 移动 → 光标追踪 → 复制发布 → 延迟删除
func (w *World) Update(deltaTime float64) {
	if w.Receive != nil {
		w.Receive.Update(deltaTime)
	}
	if w.Movement != nil {
		w.Movement.Update(deltaTime)
	}
	if w.CursorTrace != nil && w.focused {
		w.CursorTrace.Update(deltaTime)
	}
	if w.Publish != nil {
		w.Publish.Update(deltaTime)
	}
	w.EntityManager.RemoveMarkedEntities()
	w.steps++
}

// Draw 绘制本上下文
func (w *World) Draw(screen *ebiten.Image) {
	if w.settings != nil {
		w.Render.ShowDebug = w.settings.GetSettings().ShowDebug
	}
	if w.Render.ShowDebug {
		w.Render.DebugText = systems.DebugSummary(w.Name, w.HoveredEntity(), w.Binding.BindCount(), w.EntityManager.EntityCount())
	}
	w.Render.Draw(screen)
}

// SaveOnExit 实现 Saveable，保存用户设置
func (w *World) SaveOnExit() bool {
	if w.settings == nil {
		return true
	}
	if err := w.settings.Save(); err != nil {
		log.Printf("[World] %s failed to save settings: %v", w.Name, err)
		return false
	}
	return true
}

// ApplySettings 把用户设置应用到本上下文的系统
func (w *World) ApplySettings() {
	if w.settings == nil {
		return
	}
	s := w.settings.GetSettings()
	if w.CursorTrace != nil {
		w.CursorTrace.SetEnabled(s.HoverHighlightEnabled)
	}
	for _, enemy := range w.Enemies {
		if effect, ok := ecs.GetComponent[*components.HoverHighlightComponent](w.EntityManager, enemy); ok {
			effect.Intensity = s.OutlineIntensity
		}
	}
}

// SetFocused 实现 Focusable
// 失去焦点时清除本上下文的悬停高亮，之后不再追踪光标直到重新获得焦点
func (w *World) SetFocused(focused bool) {
	if w.focused && !focused && w.CursorTrace != nil {
		w.CursorTrace.Reset()
	}
	w.focused = focused
}

// HoveredEntity 当前悬停高亮的实体
func (w *World) HoveredEntity() ecs.EntityID {
	if w.CursorTrace == nil {
		return ecs.InvalidEntity
	}
	return w.CursorTrace.CurrentTarget()
}

// Steps 已执行的步数
func (w *World) Steps() uint64 {
	return w.steps
}

// BoundBodies 返回本上下文中每个已绑定身体的 NetID 到玩家ID映射
// 用于跨上下文比较绑定结果
func (w *World) BoundBodies() map[uuid.UUID]uuid.UUID {
	result := make(map[uuid.UUID]uuid.UUID)
	for _, body := range ecs.GetEntitiesWith2[*components.CharacterComponent, *components.NetIdentityComponent](w.EntityManager) {
		character, _ := ecs.GetComponent[*components.CharacterComponent](w.EntityManager, body)
		if !character.IsBound() {
			continue
		}
		identity, ok := w.Registry.OwnerOf(body)
		if !ok {
			continue
		}
		netID, _ := ecs.GetComponent[*components.NetIdentityComponent](w.EntityManager, body)
		result[netID.NetID] = identity.PlayerID
	}
	return result
}
