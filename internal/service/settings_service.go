package service

import (
	"context"
	"strconv"
	"strings"

	"NWord_Counter/internal/repository/mysql"
)

const SettingSendMessage = "send_message"

// SettingDef 配置项定义
type SettingDef struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default"`
}

// SettingValue 配置项及其当前值
type SettingValue struct {
	SettingDef
	Value string `json:"value"`
}

var settingDefs = []SettingDef{
	{
		Name:        SettingSendMessage,
		Title:       "Send Message",
		Description: "Whether or not the bot should send messages in response to detections",
		Type:        "bool",
		Default:     "true",
	},
}

func lookupSetting(name string) (SettingDef, bool) {
	for _, d := range settingDefs {
		if d.Name == name {
			return d, true
		}
	}
	return SettingDef{}, false
}

type SettingsService struct {
	repo *mysql.SettingRepository
}

func NewSettingsService(store *mysql.Store) *SettingsService {
	return &SettingsService{repo: store.Settings}
}

// List 默认值合并已保存的覆盖值
func (s *SettingsService) List(ctx context.Context, communityID uint64) ([]SettingValue, error) {
	saved, err := s.repo.List(ctx, communityID)
	if err != nil {
		return nil, persistErr("list settings", err)
	}
	overrides := make(map[string]string, len(saved))
	for _, st := range saved {
		overrides[st.Name] = st.Value
	}
	out := make([]SettingValue, 0, len(settingDefs))
	for _, d := range settingDefs {
		v, ok := overrides[d.Name]
		if !ok {
			v = d.Default
		}
		out = append(out, SettingValue{SettingDef: d, Value: v})
	}
	return out, nil
}

// Update 校验后保存，返回修改前后的值
func (s *SettingsService) Update(ctx context.Context, communityID uint64, name, raw string) (old, updated SettingValue, err error) {
	def, ok := lookupSetting(name)
	if !ok {
		return old, updated, ErrUnknownSetting
	}
	value, err := normalizeSetting(def, raw)
	if err != nil {
		return old, updated, err
	}
	current, err := s.value(ctx, communityID, def)
	if err != nil {
		return old, updated, err
	}
	if err := s.repo.Upsert(ctx, communityID, name, value); err != nil {
		return old, updated, persistErr("update setting", err)
	}
	return SettingValue{SettingDef: def, Value: current}, SettingValue{SettingDef: def, Value: value}, nil
}

// Bool 读取布尔配置
func (s *SettingsService) Bool(ctx context.Context, communityID uint64, name string) (bool, error) {
	def, ok := lookupSetting(name)
	if !ok || def.Type != "bool" {
		return false, ErrUnknownSetting
	}
	v, err := s.value(ctx, communityID, def)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(v)
}

func (s *SettingsService) value(ctx context.Context, communityID uint64, def SettingDef) (string, error) {
	v, ok, err := s.repo.Get(ctx, communityID, def.Name)
	if err != nil {
		return "", persistErr("get setting", err)
	}
	if !ok {
		return def.Default, nil
	}
	return v, nil
}

func normalizeSetting(def SettingDef, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch def.Type {
	case "bool":
		switch strings.ToUpper(raw) {
		case "TRUE":
			return "true", nil
		case "FALSE":
			return "false", nil
		}
		return "", ErrInvalidSettingValue
	case "int":
		if _, err := strconv.Atoi(raw); err != nil {
			return "", ErrInvalidSettingValue
		}
	}
	return raw, nil
}
