package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig 写入临时配置文件并返回路径
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aura.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// TestDefaultAuraConfig 测试默认配置合法
func TestDefaultAuraConfig(t *testing.T) {
	cfg := DefaultAuraConfig()
	if err := validate(cfg); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}

	if cfg.PlayerState.NetUpdateFrequency != 100 {
		t.Errorf("NetUpdateFrequency: got %v, want 100", cfg.PlayerState.NetUpdateFrequency)
	}
	if cfg.Character.RotationRate != 400 {
		t.Errorf("RotationRate: got %v, want 400", cfg.Character.RotationRate)
	}
	if cfg.Input.HideMouseCursor || cfg.Input.LockMouseToViewport || cfg.Input.HideCursorDuringCapture {
		t.Errorf("Input defaults should keep cursor visible and unlocked: %+v", cfg.Input)
	}
}

// TestLoadAuraConfigPartialFile 测试部分字段覆盖，其余保留默认值
func TestLoadAuraConfigPartialFile(t *testing.T) {
	path := writeTestConfig(t, `
playerState:
  netUpdateFrequency: 30
  startingAbilities: [Ability.Fire.FireBolt]
highlight:
  outlineColor: "#00ff00"
network:
  role: standalone
`)

	cfg, err := LoadAuraConfig(path)
	if err != nil {
		t.Fatalf("LoadAuraConfig() error: %v", err)
	}

	if cfg.PlayerState.NetUpdateFrequency != 30 {
		t.Errorf("NetUpdateFrequency: got %v, want 30", cfg.PlayerState.NetUpdateFrequency)
	}
	if cfg.PlayerState.MaxHealth != 100 {
		t.Errorf("MaxHealth should keep default 100, got %v", cfg.PlayerState.MaxHealth)
	}
	if len(cfg.PlayerState.StartingAbilities) != 1 {
		t.Errorf("StartingAbilities: got %v", cfg.PlayerState.StartingAbilities)
	}
	if got := cfg.Highlight.OutlineRGBA(); got.G != 255 || got.R != 0 {
		t.Errorf("OutlineRGBA: got %+v", got)
	}
	if cfg.Network.Role != RoleStandalone {
		t.Errorf("Role: got %q, want standalone", cfg.Network.Role)
	}
}

// TestLoadAuraConfigEnvOverride 测试环境变量覆盖文件值
func TestLoadAuraConfigEnvOverride(t *testing.T) {
	path := writeTestConfig(t, `
network:
  role: listen
  addr: "127.0.0.1:9000"
`)
	t.Setenv("AURA_NETWORK_ADDR", "0.0.0.0:9100")
	t.Setenv("AURA_INPUT_HIDE_MOUSE_CURSOR", "true")
	t.Setenv("AURA_PLAYER_STATE_STARTING_ABILITIES", "A,B")

	cfg, err := LoadAuraConfig(path)
	if err != nil {
		t.Fatalf("LoadAuraConfig() error: %v", err)
	}

	if cfg.Network.Addr != "0.0.0.0:9100" {
		t.Errorf("Addr: got %q, want env value", cfg.Network.Addr)
	}
	if !cfg.Input.HideMouseCursor {
		t.Error("HideMouseCursor should be overridden by env")
	}
	if len(cfg.PlayerState.StartingAbilities) != 2 {
		t.Errorf("StartingAbilities: got %v", cfg.PlayerState.StartingAbilities)
	}
}

// TestLoadAuraConfigZeroValuesRestored 测试显式零值回落到默认值
func TestLoadAuraConfigZeroValuesRestored(t *testing.T) {
	path := writeTestConfig(t, `
character:
  rotationRate: 0
world:
  width: 0
`)
	cfg, err := LoadAuraConfig(path)
	if err != nil {
		t.Fatalf("LoadAuraConfig() error: %v", err)
	}
	if cfg.Character.RotationRate != 400 {
		t.Errorf("RotationRate: got %v, want 400", cfg.Character.RotationRate)
	}
	if cfg.World.Width != 1280 {
		t.Errorf("World.Width: got %v, want 1280", cfg.World.Width)
	}
}

// TestLoadAuraConfigInvalid 测试非法配置
func TestLoadAuraConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"bad replication mode", "playerState:\n  replicationMode: all\n", "replicationMode"},
		{"bad role", "network:\n  role: host\n", "network.role"},
		{"bad intensity", "highlight:\n  intensity: 2\n", "intensity"},
		{"bad color", "highlight:\n  outlineColor: red\n", "outlineColor"},
		{"bad cursor", "input:\n  cursorShape: hand\n", "cursorShape"},
		{"bad path", "network:\n  path: replication\n", "network.path"},
		{"negative health", "playerState:\n  maxHealth: -1\n", "maxHealth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAuraConfig(writeTestConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Error %q should mention %q", err.Error(), tt.errPart)
			}
		})
	}
}

// TestLoadAuraConfigCursorShapes 测试所有可用的光标形状都能通过验证
func TestLoadAuraConfigCursorShapes(t *testing.T) {
	for _, shape := range []string{"default", "pointer", "crosshair", "text", "Text"} {
		cfg, err := LoadAuraConfig(writeTestConfig(t, "input:\n  cursorShape: "+shape+"\n"))
		if err != nil {
			t.Errorf("cursorShape %q rejected: %v", shape, err)
			continue
		}
		if cfg.Input.CursorShape != shape {
			t.Errorf("CursorShape: got %q, want %q", cfg.Input.CursorShape, shape)
		}
	}
}

// TestLoadAuraConfigMissingFile 测试文件不存在
func TestLoadAuraConfigMissingFile(t *testing.T) {
	if _, err := LoadAuraConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestParseHexColor 测试颜色解析
func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#102030")
	if err != nil {
		t.Fatalf("ParseHexColor() error: %v", err)
	}
	if c.R != 0x10 || c.G != 0x20 || c.B != 0x30 || c.A != 255 {
		t.Errorf("ParseHexColor: got %+v", c)
	}
	if _, err := ParseHexColor("#12345"); err == nil {
		t.Error("Expected error for short color")
	}
	if _, err := ParseHexColor("#zzzzzz"); err == nil {
		t.Error("Expected error for non-hex color")
	}
}
