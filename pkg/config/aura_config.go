package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 运行角色
const (
	// RoleStandalone 单机：一个权威上下文，无观察端
	RoleStandalone = "standalone"
	// RoleListen 监听服务器：本地玩家在权威上下文中游戏，同时向观察端广播
	RoleListen = "listen"
	// RoleObserver 观察端：连接到监听服务器，镜像权威状态
	RoleObserver = "observer"
)

// envPrefix 环境变量前缀，例如 AURA_NETWORK_ADDR
const envPrefix = "AURA_"

// InputConfig 光标与输入模式配置
//
// 这些设置在启动时显式传给 utils.ApplyInputMode，而不是作为进程级隐式状态。
type InputConfig struct {
	// HideMouseCursor 是否隐藏系统光标（默认显示）
	HideMouseCursor bool `yaml:"hideMouseCursor" env:"HIDE_MOUSE_CURSOR"`
	// CursorShape 光标形状：default / pointer / crosshair / text
	CursorShape string `yaml:"cursorShape" env:"CURSOR_SHAPE"`
	// LockMouseToViewport 是否把光标锁定在窗口内（默认不锁定，可移出窗口）
	LockMouseToViewport bool `yaml:"lockMouseToViewport" env:"LOCK_MOUSE_TO_VIEWPORT"`
	// HideCursorDuringCapture 进入游戏输入状态时是否隐藏光标（默认不隐藏）
	HideCursorDuringCapture bool `yaml:"hideCursorDuringCapture" env:"HIDE_CURSOR_DURING_CAPTURE"`
}

// CharacterConfig 角色移动配置
type CharacterConfig struct {
	MoveSpeed                float64 `yaml:"moveSpeed" env:"MOVE_SPEED"`
	RotationRate             float64 `yaml:"rotationRate" env:"ROTATION_RATE"` // 度/秒
	OrientRotationToMovement bool    `yaml:"orientRotationToMovement" env:"ORIENT_ROTATION_TO_MOVEMENT"`
	ConstrainToPlane         bool    `yaml:"constrainToPlane" env:"CONSTRAIN_TO_PLANE"`
	SnapToPlaneAtStart       bool    `yaml:"snapToPlaneAtStart" env:"SNAP_TO_PLANE_AT_START"`
	// Width, Height 身体碰撞盒尺寸
	Width  float64 `yaml:"width" env:"WIDTH"`
	Height float64 `yaml:"height" env:"HEIGHT"`
}

// PlayerStateConfig 玩家身份与能力包配置
type PlayerStateConfig struct {
	// NetUpdateFrequency 权威端推送频率（次/秒）
	NetUpdateFrequency float64 `yaml:"netUpdateFrequency" env:"NET_UPDATE_FREQUENCY"`
	// ReplicationMode 能力系统复制模式：full / mixed / minimal
	ReplicationMode   string   `yaml:"replicationMode" env:"REPLICATION_MODE"`
	MaxHealth         float64  `yaml:"maxHealth" env:"MAX_HEALTH"`
	MaxMana           float64  `yaml:"maxMana" env:"MAX_MANA"`
	StartingAbilities []string `yaml:"startingAbilities" env:"STARTING_ABILITIES" envSeparator:","`
}

// HighlightConfig 悬停高亮配置
type HighlightConfig struct {
	Intensity    float64 `yaml:"intensity" env:"INTENSITY"`
	StencilValue int     `yaml:"stencilValue" env:"STENCIL_VALUE"`
	OutlineColor string  `yaml:"outlineColor" env:"OUTLINE_COLOR"` // #RRGGBB
}

// NetworkConfig 复制通道配置
type NetworkConfig struct {
	Role string `yaml:"role" env:"ROLE"`
	Addr string `yaml:"addr" env:"ADDR"`
	Path string `yaml:"path" env:"PATH"`
	// LocalObservers 进程内额外创建的观察上下文数量（通过 LocalHub 连接）
	LocalObservers int `yaml:"localObservers" env:"LOCAL_OBSERVERS"`
}

// WorldConfig 世界尺寸与调试配置
type WorldConfig struct {
	Width   float64 `yaml:"width" env:"WIDTH"`
	Height  float64 `yaml:"height" env:"HEIGHT"`
	Enemies int     `yaml:"enemies" env:"ENEMIES"`
	Verbose bool    `yaml:"verbose" env:"VERBOSE"`
}

// AuraConfig 顶层配置
type AuraConfig struct {
	Input       InputConfig       `yaml:"input" envPrefix:"INPUT_"`
	Character   CharacterConfig   `yaml:"character" envPrefix:"CHARACTER_"`
	PlayerState PlayerStateConfig `yaml:"playerState" envPrefix:"PLAYER_STATE_"`
	Highlight   HighlightConfig   `yaml:"highlight" envPrefix:"HIGHLIGHT_"`
	Network     NetworkConfig     `yaml:"network" envPrefix:"NETWORK_"`
	World       WorldConfig       `yaml:"world" envPrefix:"WORLD_"`
}

// DefaultAuraConfig 返回默认配置
func DefaultAuraConfig() *AuraConfig {
	return &AuraConfig{
		Input: InputConfig{
			CursorShape: "default",
		},
		Character: CharacterConfig{
			MoveSpeed:                200,
			RotationRate:             400,
			OrientRotationToMovement: true,
			ConstrainToPlane:         true,
			SnapToPlaneAtStart:       true,
			Width:                    40,
			Height:                   60,
		},
		PlayerState: PlayerStateConfig{
			NetUpdateFrequency: 100,
			ReplicationMode:    "mixed",
			MaxHealth:          100,
			MaxMana:            50,
		},
		Highlight: HighlightConfig{
			Intensity:    0.3,
			StencilValue: 250,
			OutlineColor: "#ff3030",
		},
		Network: NetworkConfig{
			Role: RoleListen,
			Addr: "127.0.0.1:7777",
			Path: "/replication",
		},
		World: WorldConfig{
			Width:   1280,
			Height:  720,
			Enemies: 4,
		},
	}
}

// LoadAuraConfig 从YAML文件加载配置，并应用环境变量覆盖
//
// 参数：
//   - filepath: 配置文件路径，为空时只使用默认值和环境变量
//
// 返回：
//   - *AuraConfig: 解析后的配置
//   - error: 文件读取、解析或验证失败时返回错误
func LoadAuraConfig(filepath string) (*AuraConfig, error) {
	cfg := DefaultAuraConfig()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
		}
		// 未出现在文件中的字段保留默认值
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML from %s: %w", filepath, err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		if filepath == "" {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return nil, fmt.Errorf("invalid config in %s: %w", filepath, err)
	}

	return cfg, nil
}

// ApplyEnv 用 AURA_ 前缀的环境变量覆盖配置
// 未设置的环境变量不会修改已有值
func ApplyEnv(cfg *AuraConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applyDefaults 为显式写成零值的数值字段恢复默认值
func applyDefaults(cfg *AuraConfig) {
	defaults := DefaultAuraConfig()

	if cfg.Input.CursorShape == "" {
		cfg.Input.CursorShape = defaults.Input.CursorShape
	}
	if cfg.Character.MoveSpeed == 0 {
		cfg.Character.MoveSpeed = defaults.Character.MoveSpeed
	}
	if cfg.Character.RotationRate == 0 {
		cfg.Character.RotationRate = defaults.Character.RotationRate
	}
	if cfg.PlayerState.NetUpdateFrequency == 0 {
		cfg.PlayerState.NetUpdateFrequency = defaults.PlayerState.NetUpdateFrequency
	}
	if cfg.PlayerState.ReplicationMode == "" {
		cfg.PlayerState.ReplicationMode = defaults.PlayerState.ReplicationMode
	}
	if cfg.Highlight.StencilValue == 0 {
		cfg.Highlight.StencilValue = defaults.Highlight.StencilValue
	}
	if cfg.Highlight.OutlineColor == "" {
		cfg.Highlight.OutlineColor = defaults.Highlight.OutlineColor
	}
	if cfg.Network.Role == "" {
		cfg.Network.Role = defaults.Network.Role
	}
	if cfg.Network.Path == "" {
		cfg.Network.Path = defaults.Network.Path
	}
	if cfg.World.Width == 0 {
		cfg.World.Width = defaults.World.Width
	}
	if cfg.World.Height == 0 {
		cfg.World.Height = defaults.World.Height
	}
}

// validate 验证配置的合法性
func validate(cfg *AuraConfig) error {
	switch strings.ToLower(cfg.Input.CursorShape) {
	case "default", "pointer", "crosshair", "text":
	default:
		return fmt.Errorf("input.cursorShape must be default, pointer, crosshair or text, got %q", cfg.Input.CursorShape)
	}

	if cfg.Character.MoveSpeed < 0 {
		return fmt.Errorf("character.moveSpeed cannot be negative")
	}
	if cfg.Character.RotationRate < 0 {
		return fmt.Errorf("character.rotationRate cannot be negative")
	}

	if cfg.PlayerState.NetUpdateFrequency < 0 {
		return fmt.Errorf("playerState.netUpdateFrequency cannot be negative")
	}
	switch strings.ToLower(cfg.PlayerState.ReplicationMode) {
	case "full", "mixed", "minimal":
	default:
		return fmt.Errorf("playerState.replicationMode must be full, mixed or minimal, got %q", cfg.PlayerState.ReplicationMode)
	}
	if cfg.PlayerState.MaxHealth <= 0 {
		return fmt.Errorf("playerState.maxHealth must be positive")
	}
	if cfg.PlayerState.MaxMana < 0 {
		return fmt.Errorf("playerState.maxMana cannot be negative")
	}

	if cfg.Highlight.Intensity < 0 || cfg.Highlight.Intensity > 1 {
		return fmt.Errorf("highlight.intensity must be between 0 and 1, got %v", cfg.Highlight.Intensity)
	}
	if _, err := ParseHexColor(cfg.Highlight.OutlineColor); err != nil {
		return fmt.Errorf("highlight.outlineColor: %w", err)
	}

	switch cfg.Network.Role {
	case RoleStandalone, RoleListen, RoleObserver:
	default:
		return fmt.Errorf("network.role must be standalone, listen or observer, got %q", cfg.Network.Role)
	}
	if cfg.Network.Role != RoleStandalone && cfg.Network.Addr == "" {
		return fmt.Errorf("network.addr is required for role %s", cfg.Network.Role)
	}
	if !strings.HasPrefix(cfg.Network.Path, "/") {
		return fmt.Errorf("network.path must start with /, got %q", cfg.Network.Path)
	}
	if cfg.Network.LocalObservers < 0 {
		return fmt.Errorf("network.localObservers cannot be negative")
	}

	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %vx%v", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.Enemies < 0 {
		return fmt.Errorf("world.enemies cannot be negative")
	}

	return nil
}

// ParseHexColor 解析 #RRGGBB 格式的颜色
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, expected #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// OutlineRGBA 返回解析后的描边颜色（配置已通过验证时不会失败）
func (c HighlightConfig) OutlineRGBA() color.RGBA {
	rgba, err := ParseHexColor(c.OutlineColor)
	if err != nil {
		return color.RGBA{R: 255, G: 48, B: 48, A: 255}
	}
	return rgba
}
