package render

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLocale is used when no locale is requested.
const DefaultLocale = "en"

// ErrMissingTranslation is returned when a catalog has no entry for a key.
var ErrMissingTranslation = errors.New("render: missing translation")

// Translator resolves chrome strings for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Catalog is a Translator backed by in-memory message tables keyed by locale
// then message key. Messages are fmt patterns.
type Catalog map[string]map[string]string

// Translate looks key up in locale, then in the locale's base language
// ("zh" for "zh-CN"), then in DefaultLocale.
func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		messages, ok := c[candidate]
		if !ok {
			continue
		}
		if pattern, ok := messages[key]; ok {
			if len(args) == 0 {
				return pattern, nil
			}
			return fmt.Sprintf(pattern, args...), nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
}

// Locales lists the locales the catalog knows.
func (c Catalog) Locales() []string {
	out := make([]string, 0, len(c))
	for locale := range c {
		out = append(out, locale)
	}
	return out
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	chain := make([]string, 0, 3)
	if locale != "" {
		chain = append(chain, locale)
		if base, _, ok := strings.Cut(strings.ReplaceAll(locale, "_", "-"), "-"); ok && base != "" {
			chain = append(chain, base)
		}
	}
	return append(chain, DefaultLocale)
}

// TranslateWith resolves key with t, then with BuiltinCatalog, and finally
// returns the key itself so templates never render blanks.
func TranslateWith(t Translator, locale, key string, args ...any) string {
	if t != nil {
		if msg, err := t.Translate(locale, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if msg, err := BuiltinCatalog.Translate(locale, key, args...); err == nil {
		return msg
	}
	return key
}

// TemplateFuncs exposes translation to templates as t("key", args...).
func TemplateFuncs(t Translator, locale string) map[string]any {
	return map[string]any{
		"t": func(key string, args ...any) string {
			return TranslateWith(t, locale, key, args...)
		},
		"locale": func() string {
			if strings.TrimSpace(locale) == "" {
				return DefaultLocale
			}
			return locale
		},
	}
}

// BuiltinCatalog holds the console chrome strings.
var BuiltinCatalog = Catalog{
	"en": {
		"form.no_parameters":   "This tool takes no parameters.",
		"form.execute":         "Execute",
		"form.reset":           "Reset",
		"form.result":          "Result",
		"form.result_raw":      "Response is not JSON; shown verbatim.",
		"tools.title":          "Tools",
		"tools.search":         "Search tools",
		"tools.empty":          "No tools found",
		"tools.empty_hint":     "No tool matches the filter or the backend is unreachable.",
		"tools.no_description": "No description",
		"tools.details":        "Tool details",
		"tools.id":             "Tool ID: %s",
		"tools.version":        "Version: %s",
		"tools.retry":          "Retry",
		"service.title":        "Service",
		"service.running":      "Running",
		"service.stopped":      "Stopped",
		"service.start":        "Start",
		"service.stop":         "Stop",
		"service.pid":          "PID: %d",
		"logs.title":           "Logs",
		"logs.level":           "Level",
		"logs.limit":           "Lines",
		"logs.refresh":         "Refresh",
		"logs.clear":           "Clear",
		"logs.empty":           "No log content",
		"config.title":         "Configuration",
		"config.save":          "Save",
		"config.test":          "Test connection",
		"config.upstream":      "Upstream system",
		"config.server":        "MCP server",
		"notice.select_tool":   "Select a tool first",
		"notice.error":         "Error",
		"notice.config_saved":  "Configuration saved",
		"notice.logs_cleared":  "Logs cleared",
		"notice.test_ok":       "Connection test succeeded",
		"notice.test_failed":   "Connection test failed",
		"notice.service_done":  "Service request completed",
	},
	"zh": {
		"form.no_parameters":   "此工具没有参数",
		"form.execute":         "执行",
		"form.reset":           "重置",
		"form.result":          "执行结果",
		"form.result_raw":      "响应不是 JSON，按原样显示。",
		"tools.title":          "工具列表",
		"tools.search":         "搜索工具",
		"tools.empty":          "未找到工具",
		"tools.empty_hint":     "没有匹配的工具或服务器连接失败",
		"tools.no_description": "无描述",
		"tools.details":        "工具详情",
		"tools.id":             "工具ID: %s",
		"tools.version":        "版本: %s",
		"tools.retry":          "重试",
		"service.title":        "服务管理",
		"service.running":      "运行中",
		"service.stopped":      "已停止",
		"service.start":        "启动服务",
		"service.stop":         "停止服务",
		"service.pid":          "进程ID: %d",
		"logs.title":           "日志",
		"logs.level":           "级别",
		"logs.limit":           "行数",
		"logs.refresh":         "刷新",
		"logs.clear":           "清空日志",
		"logs.empty":           "没有日志内容",
		"config.title":         "配置",
		"config.save":          "保存配置",
		"config.test":          "测试连接",
		"config.upstream":      "SAP 配置",
		"config.server":        "MCP 服务器配置",
		"notice.select_tool":   "请先选择一个工具",
		"notice.error":         "错误",
		"notice.config_saved":  "配置已保存",
		"notice.logs_cleared":  "日志已清空",
		"notice.test_ok":       "连接测试成功",
		"notice.test_failed":   "连接测试失败",
		"notice.service_done":  "服务操作已完成",
	},
}
